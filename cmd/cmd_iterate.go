// cmd_iterate.go - Iterate Command
// Hauptfunktionen: IterateHandler
//
// Baut aus einer CSV-Datei ein Tensor-Slice-Dataset (eine float32-Komponente
// pro Spalte), wendet optionale Transformationen an und iteriert ueber die
// Optional-Form bis zum Ende der Sequenz.
package cmd

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/7blacky7/tensorbind/data"
	"github.com/7blacky7/tensorbind/envconfig"
	"github.com/7blacky7/tensorbind/ml"
	"github.com/7blacky7/tensorbind/op"
)

func newIterateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "iterate CSVFILE",
		Short: "Iterate the rows of a CSV file as dataset elements",
		Args:  cobra.ExactArgs(1),
		RunE:  IterateHandler,
	}

	cmd.Flags().Bool("header", false, "Treat the first CSV row as column names")
	cmd.Flags().Int64("batch", 0, "Group elements into batches of this size")
	cmd.Flags().Int64("take", -1, "Keep at most this many elements (-1 = all)")
	cmd.Flags().Int64("skip", 0, "Drop this many leading elements")
	cmd.Flags().Int64("prefetch", 0, "Prefetch depth (0 = no prefetch)")

	return cmd
}

// IterateHandler - Iteriert ueber die Elemente der CSV-Eingabe
func IterateHandler(cmd *cobra.Command, args []string) error {
	header, _ := cmd.Flags().GetBool("header")
	batch, _ := cmd.Flags().GetInt64("batch")
	take, _ := cmd.Flags().GetInt64("take")
	skip, _ := cmd.Flags().GetInt64("skip")
	prefetch, _ := cmd.Flags().GetInt64("prefetch")

	names, columns, err := readCSVColumns(args[0], header)
	if err != nil {
		return err
	}

	env, err := ml.NewEnvironment(envconfig.Engine(), ml.EnvironmentParams{Mode: ml.EagerMode})
	if err != nil {
		return err
	}
	scope := op.NewScope(env)

	components := make([]ml.Operand, len(columns))
	for i, column := range columns {
		c, err := op.Const(scope, column, ml.DTypeF32, ml.MakeShape(int64(len(column))))
		if err != nil {
			return err
		}
		components[i] = c
	}

	ds, err := data.FromTensorSlices(scope, components)
	if err != nil {
		return err
	}
	if skip > 0 {
		if ds, err = ds.Skip(skip); err != nil {
			return err
		}
	}
	if take >= 0 {
		if ds, err = ds.Take(take); err != nil {
			return err
		}
	}
	if batch > 0 {
		if ds, err = ds.Batch(batch); err != nil {
			return err
		}
	}
	if prefetch > 0 {
		if ds, err = ds.Prefetch(prefetch); err != nil {
			return err
		}
	}

	iterator, err := ds.MakeIterator()
	if err != nil {
		return err
	}

	var rows [][]string
	for i := 0; ; i++ {
		optional, err := iterator.GetNextAsOptional()
		if err != nil {
			return err
		}

		hasValue, err := optionalBool(optional)
		if err != nil {
			return err
		}
		if !hasValue {
			break
		}

		components, err := optional.Value()
		if err != nil {
			return err
		}

		row := []string{strconv.Itoa(i)}
		for _, c := range components {
			t, err := c.Value()
			if err != nil {
				return err
			}
			row = append(row, formatFloats(t.Floats()))
		}
		rows = append(rows, row)
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader(append([]string{"ELEMENT"}, names...))
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetNoWhiteSpace(true)
	table.SetTablePadding("    ")
	table.AppendBulk(rows)
	table.Render()

	return nil
}

// optionalBool liest den konkreten HasValue-Bool eines Optionals.
func optionalBool(optional *data.DatasetOptional) (bool, error) {
	hv, err := optional.HasValue()
	if err != nil {
		return false, err
	}
	t, err := hv.Value()
	if err != nil {
		return false, err
	}
	bs := t.Bools()
	if len(bs) != 1 {
		return false, errors.New("has_value is not a scalar")
	}
	return bs[0], nil
}

func formatFloats(fs []float32) string {
	parts := make([]string, len(fs))
	for i, f := range fs {
		parts[i] = strconv.FormatFloat(float64(f), 'g', -1, 32)
	}
	if len(parts) == 1 {
		return parts[0]
	}
	return fmt.Sprintf("[%s]", strings.Join(parts, " "))
}
