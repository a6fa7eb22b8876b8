// structure.go - Element-Struktur eines Datasets
// Die Struktur eines Elements ist das geordnete Paar aus Typ- und Formliste.
// Beide Listen muessen gleich lang sein und zwischen Dataset und Iterator
// komponentenweise uebereinstimmen.
package data

import (
	"fmt"
	"slices"

	"github.com/7blacky7/tensorbind/ml"
)

// structuresEqual prueft Typ- und Formlisten elementweise.
func structuresEqual(aTypes []ml.DType, aShapes []ml.Shape, bTypes []ml.DType, bShapes []ml.Shape) bool {
	if !slices.Equal(aTypes, bTypes) {
		return false
	}
	if len(aShapes) != len(bShapes) {
		return false
	}
	for i := range aShapes {
		if !aShapes[i].Equal(bShapes[i]) {
			return false
		}
	}
	return true
}

// validateStructure prueft die Invarianten einer Element-Struktur.
func validateStructure(outputTypes []ml.DType, outputShapes []ml.Shape) error {
	if len(outputTypes) == 0 {
		return fmt.Errorf("%w: element structure must have at least one component", ml.ErrInvalidArgument)
	}
	if len(outputTypes) != len(outputShapes) {
		return fmt.Errorf("%w: structure has %d output types but %d output shapes",
			ml.ErrInvalidArgument, len(outputTypes), len(outputShapes))
	}
	return nil
}
