package storage

import (
	"encoding/json"
	"io"

	"github.com/san-kum/ionosim/internal/dynamo"
)

type ExportData struct {
	Preset     string             `json:"preset"`
	Mode       string             `json:"mode"`
	Controller string             `json:"controller"`
	Dt         float64            `json:"dt"`
	Seed       int64              `json:"seed"`
	Steps      int                `json:"steps"`
	StateNames []string           `json:"state_names"`
	InputNames []string           `json:"input_names"`
	Times      []float64          `json:"times"`
	States     [][]float64        `json:"states"`
	Controls   [][]float64        `json:"controls"`
	Metrics    map[string]float64 `json:"metrics"`
}

func ExportJSON(w io.Writer, spec RunSpec, result *dynamo.Result) error {
	data := ExportData{
		Preset:     spec.Preset,
		Mode:       spec.Mode,
		Controller: spec.Controller,
		Dt:         spec.Dt,
		Seed:       spec.Seed,
		Steps:      result.StepsTaken,
		StateNames: spec.StateNames,
		InputNames: spec.InputNames,
		Times:      result.Times,
		States:     make([][]float64, len(result.States)),
		Controls:   make([][]float64, len(result.Controls)),
		Metrics:    result.Metrics,
	}

	for i, s := range result.States {
		data.States[i] = s
	}
	for i, c := range result.Controls {
		data.Controls[i] = c
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}
