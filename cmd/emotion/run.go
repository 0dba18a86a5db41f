package main

import (
	"fmt"
	"net/http"
	"sync"

	"github.com/genert/emotion"
	"github.com/genert/emotion/cv"
	"github.com/genert/emotion/web"
	"github.com/hybridgroup/mjpeg"
	"github.com/spf13/cobra"
	"gocv.io/x/gocv"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Serve the control API and classify frames while started",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Printf("gocv version: %s\n", gocv.Version())
		fmt.Printf("opencv lib version: %s\n", gocv.OpenCVVersion())

		labels, err := emotion.LoadLabels(settings.ModelSettings.LabelsFile)
		if err != nil {
			return err
		}

		board := &web.Board{}
		publishers := emotion.Publishers{board}
		var stream http.Handler
		if settings.MjpegSettings.Enable {
			colors, err := cv.LabelColors(labels, settings.LabelColors)
			if err != nil {
				return err
			}
			s := mjpeg.NewStream()
			publishers = append(publishers, cv.NewOverlayPublisher(s, colors, settings.MjpegSettings.Quality, log))
			stream = s
		}

		loop := emotion.NewFrameLoop(
			newSource(settings),
			emotion.NewRefreshScheduler(settings.LoopSettings.RefreshHz),
			publishers,
			log,
		)

		// Assets load in the background; until then Start is refused with the status.
		var (
			pipelineMu sync.Mutex
			pipeline   *emotion.Pipeline
		)
		go func() {
			p, err := loadPipeline(settings, labels, loop.SetStatus)
			if err != nil {
				log.WithError(err).Error("Can't load assets")
				loop.SetStatus(err.Error())
				return
			}
			pipelineMu.Lock()
			pipeline = p
			pipelineMu.Unlock()
			loop.SetPipeline(p)
			log.WithField("labels", len(labels)).Info("assets loaded")

			if settings.HTTPSettings.AutoStart && cmd.Context().Err() == nil {
				if err := loop.Start(); err != nil {
					log.WithError(err).Error("Can't start frame loop")
				}
			}
		}()

		server := web.NewServer(loop, board, func() emotion.LabelSet { return labels }, stream, log)
		err = server.ListenAndServe(cmd.Context(), settings.HTTPSettings.Port)

		fmt.Println("Shutting down...")
		if stopErr := loop.Stop(); stopErr != nil {
			log.WithError(stopErr).Warn("Error while stopping frame loop")
		}
		pipelineMu.Lock()
		defer pipelineMu.Unlock()
		if pipeline != nil {
			if closeErr := pipeline.Close(); closeErr != nil {
				log.WithError(closeErr).Warn("Error while releasing models")
			}
		}
		return err
	},
}
