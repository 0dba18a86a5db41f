package main

import (
	"encoding/json"

	"github.com/genert/emotion"
	"github.com/genert/emotion/cv"
	"github.com/spf13/cobra"
)

type classifyOutput struct {
	Image    string            `json:"image"`
	Face     bool              `json:"face"`
	Decision *emotion.Decision `json:"decision,omitempty"`
}

var classifyCmd = &cobra.Command{
	Use:   "classify IMAGE...",
	Short: "Classify the largest face of each still image",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		labels, err := emotion.LoadLabels(settings.ModelSettings.LabelsFile)
		if err != nil {
			return err
		}
		p, err := loadPipeline(settings, labels, func(s string) { log.Debug(s) })
		if err != nil {
			return err
		}
		defer p.Close()

		enc := json.NewEncoder(cmd.OutOrStdout())
		for _, path := range args {
			frame, err := cv.ReadImage(path)
			if err != nil {
				return err
			}
			d, found, err := p.Classify(cmd.Context(), frame)
			if err != nil {
				return err
			}
			out := classifyOutput{Image: path, Face: found}
			if found {
				out.Decision = &d
			}
			if err := enc.Encode(out); err != nil {
				return err
			}
		}
		return nil
	},
}
