// Command astrochart-render draws a radix chart, or a transit chart when the
// input has a transit section, as SVG.
//
// Usage:
//
//	astrochart-render -data chart.yaml -out chart.svg
//
// The data file holds a radix and an optional transit:
//
//	radix:
//	  planets:
//	    - {name: Sun, angle: 10.5}
//	  cusps: [296, 350, 30, 56, 75, 94, 116, 170, 210, 236, 255, 274]
//	transit:
//	  planets:
//	    - {name: Moon, angle: 91}
//	  cusps: [0, 30, 60, 90, 120, 150, 180, 210, 240, 270, 300, 330]
package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/satindergrewal/astrochart"
	"github.com/satindergrewal/astrochart/internal/config"
	"github.com/satindergrewal/astrochart/internal/logger"
	"github.com/satindergrewal/astrochart/internal/metrics"
)

type chartFile struct {
	Radix   astrochart.Data  `yaml:"radix"`
	Transit *astrochart.Data `yaml:"transit"`
}

func main() {
	dataPath := flag.String("data", "chart.yaml", "Chart data YAML file")
	configPath := flag.String("config", "", "Config YAML file (defaults when empty)")
	outPath := flag.String("out", "-", "Output SVG path, - for stdout")
	metricsPath := flag.String("metrics-out", "", "Write Prometheus text metrics to this file")
	flag.Parse()

	cfg, err := config.LoadWithEnv(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	log, closer, err := logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	defer closer.Close()

	if err := run(log, cfg, *dataPath, *outPath, *metricsPath); err != nil {
		log.Error().Err(err).Msg("render failed")
		closer.Close()
		os.Exit(1)
	}
}

func run(log zerolog.Logger, cfg *config.Config, dataPath, outPath, metricsPath string) error {
	chartCfg, err := cfg.Chart.ChartConfig()
	if err != nil {
		return err
	}

	b, err := os.ReadFile(dataPath)
	if err != nil {
		return fmt.Errorf("read chart data: %w", err)
	}
	var data chartFile
	if err := yaml.Unmarshal(b, &data); err != nil {
		return fmt.Errorf("parse chart data: %w", err)
	}

	var rec *metrics.Recorder
	opts := []astrochart.RendererOption{astrochart.WithLogger(log)}
	if metricsPath != "" {
		rec = metrics.New()
		opts = append(opts, astrochart.WithMetrics(rec))
	}
	renderer := astrochart.NewRenderer(opts...)

	radix, err := astrochart.NewRadix(data.Radix, chartCfg, astrochart.WithChartLogger(log))
	if err != nil {
		return err
	}

	write := func(w io.Writer) error {
		if data.Transit != nil {
			transit, err := radix.Transit(*data.Transit, astrochart.WithChartLogger(log))
			if err != nil {
				return err
			}
			if err := renderer.WriteTransit(w, transit); err != nil {
				return err
			}
			log.Info().Int("aspects", len(transit.Aspects)).Str("out", outPath).Msg("transit chart written")
			return nil
		}
		if err := renderer.WriteRadix(w, radix); err != nil {
			return err
		}
		log.Info().Int("aspects", len(radix.Aspects)).Str("out", outPath).Msg("radix chart written")
		return nil
	}
	if err := writeOutput(outPath, write); err != nil {
		return err
	}

	if rec != nil {
		if err := rec.WriteTextfile(metricsPath); err != nil {
			return err
		}
	}
	return nil
}

// writeOutput runs write against stdout for "-" or a created file, which
// is closed before returning so a failed flush is reported.
func writeOutput(path string, write func(io.Writer) error) error {
	if path == "-" {
		return write(os.Stdout)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close output: %w", err)
	}
	return nil
}
