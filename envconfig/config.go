// config.go - Haupt-Konfigurationsfunktionen fuer tensorbind
//
// Dieses Modul enthaelt:
// - LogLevel: Gibt Log-Level zurueck (TENSORBIND_DEBUG)
// - Engine: Gibt den Namen der registrierten Engine zurueck (TENSORBIND_ENGINE)
// - PrefetchDepth: Gibt die Standard-Prefetch-Tiefe zurueck (TENSORBIND_PREFETCH)
//
// Utility-Funktionen und AsMap/Values sind ausgelagert in config_utils.go.
package envconfig

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
)

// LogLevel gibt das Log-Level zurueck
// Konfigurierbar via TENSORBIND_DEBUG
// Werte: 0/false = INFO (Default), 1/true = DEBUG, 2 = TRACE
func LogLevel() slog.Level {
	level := slog.LevelInfo
	if s := Var("TENSORBIND_DEBUG"); s != "" {
		if b, _ := strconv.ParseBool(s); b {
			level = slog.LevelDebug
		} else if i, _ := strconv.ParseInt(s, 10, 64); i != 0 {
			level = slog.Level(i * -4)
		}
	}

	return level
}

// Engine gibt den Namen der zu verwendenden Engine zurueck
// Konfigurierbar via TENSORBIND_ENGINE
// Default: mem
func Engine() string {
	if s := String("TENSORBIND_ENGINE")(); s != "" {
		return s
	}

	return "mem"
}

// PrefetchDepth gibt die Standard-Tiefe fuer Prefetch-Datasets zurueck
// Konfigurierbar via TENSORBIND_PREFETCH
// Default: 2
func PrefetchDepth() uint {
	return Uint("TENSORBIND_PREFETCH", 2)()
}

// Var gibt eine Environment-Variable zurueck
// Entfernt fuehrende/trailing Quotes und Leerzeichen
func Var(key string) string {
	return strings.Trim(strings.TrimSpace(os.Getenv(key)), "\"'")
}
