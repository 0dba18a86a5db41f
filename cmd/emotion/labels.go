package main

import (
	"fmt"

	"github.com/genert/emotion"
	"github.com/genert/emotion/cv"
	"github.com/spf13/cobra"
)

var labelsCmd = &cobra.Command{
	Use:   "labels",
	Short: "Print the label set and overlay colour of each label",
	RunE: func(cmd *cobra.Command, args []string) error {
		labels, err := emotion.LoadLabels(settings.ModelSettings.LabelsFile)
		if err != nil {
			return err
		}
		colors, err := cv.LabelColors(labels, settings.LabelColors)
		if err != nil {
			return err
		}
		for i, l := range labels {
			c := colors[l]
			fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\t#%02x%02x%02x\n", i, l, c.R, c.G, c.B)
		}
		return nil
	},
}
