package storage

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/san-kum/ionosim/internal/dynamo"
)

const inputPrefix = "u_"

// Trajectory is a rollout read back from CSV.
type Trajectory struct {
	StateNames []string
	InputNames []string
	Times      []float64
	States     []dynamo.State
	Controls   []dynamo.Control
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// WriteCSV writes one row per recorded state: time, the named state
// columns, then the input applied from that state prefixed with "u_".
// The final state has no applied input and leaves those cells empty.
func WriteCSV(w io.Writer, stateNames, inputNames []string, result *dynamo.Result) error {
	cw := csv.NewWriter(w)

	if len(result.States) == 0 {
		cw.Flush()
		return cw.Error()
	}

	stateCols := len(result.States[0])
	header := []string{"time"}
	for i := 0; i < stateCols; i++ {
		if i < len(stateNames) {
			header = append(header, stateNames[i])
		} else {
			header = append(header, fmt.Sprintf("x%d", i))
		}
	}

	inputCols := 0
	if len(result.Controls) > 0 {
		inputCols = len(result.Controls[0])
	}
	for i := 0; i < inputCols; i++ {
		if i < len(inputNames) {
			header = append(header, inputPrefix+inputNames[i])
		} else {
			header = append(header, fmt.Sprintf("%s%d", inputPrefix, i))
		}
	}

	if err := cw.Write(header); err != nil {
		return err
	}

	for i, x := range result.States {
		row := make([]string, 0, len(header))
		t := 0.0
		if i < len(result.Times) {
			t = result.Times[i]
		}
		row = append(row, formatFloat(t))
		for _, v := range x {
			row = append(row, formatFloat(v))
		}
		for j := 0; j < inputCols; j++ {
			if i < len(result.Controls) && j < len(result.Controls[i]) {
				row = append(row, formatFloat(result.Controls[i][j]))
			} else {
				row = append(row, "")
			}
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// ReadCSV parses the format produced by WriteCSV.
func ReadCSV(r io.Reader) (*Trajectory, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}

	traj := &Trajectory{
		Times:    []float64{},
		States:   []dynamo.State{},
		Controls: []dynamo.Control{},
	}
	if len(records) == 0 {
		return traj, nil
	}

	header := records[0]
	if len(header) == 0 || header[0] != "time" {
		return nil, fmt.Errorf("read csv: missing time column")
	}
	for _, col := range header[1:] {
		if name, ok := strings.CutPrefix(col, inputPrefix); ok {
			traj.InputNames = append(traj.InputNames, name)
		} else {
			traj.StateNames = append(traj.StateNames, col)
		}
	}
	nx, nu := len(traj.StateNames), len(traj.InputNames)

	for line, record := range records[1:] {
		if len(record) != 1+nx+nu {
			return nil, fmt.Errorf("read csv: row %d has %d fields, want %d", line+2, len(record), 1+nx+nu)
		}

		t, err := strconv.ParseFloat(record[0], 64)
		if err != nil {
			return nil, fmt.Errorf("read csv: row %d time: %w", line+2, err)
		}

		x := make(dynamo.State, nx)
		for j := range x {
			if x[j], err = strconv.ParseFloat(record[1+j], 64); err != nil {
				return nil, fmt.Errorf("read csv: row %d %s: %w", line+2, traj.StateNames[j], err)
			}
		}

		traj.Times = append(traj.Times, t)
		traj.States = append(traj.States, x)

		if nu == 0 || record[1+nx] == "" {
			continue
		}
		u := make(dynamo.Control, nu)
		for j := range u {
			if u[j], err = strconv.ParseFloat(record[1+nx+j], 64); err != nil {
				return nil, fmt.Errorf("read csv: row %d %s: %w", line+2, traj.InputNames[j], err)
			}
		}
		traj.Controls = append(traj.Controls, u)
	}

	return traj, nil
}

// Result converts the trajectory back into a rollout result. Metrics are
// not stored in the CSV and come back empty.
func (t *Trajectory) Result() *dynamo.Result {
	steps := len(t.States) - 1
	if steps < 0 {
		steps = 0
	}
	return &dynamo.Result{
		States:     t.States,
		Controls:   t.Controls,
		Times:      t.Times,
		Metrics:    map[string]float64{},
		StepsTaken: steps,
	}
}
