package main

import (
	"fmt"

	"github.com/spf13/cobra"

	csvio "github.com/volcwatch/seistream/pkg/io/csv"
	"github.com/volcwatch/seistream/pkg/series"
	"github.com/volcwatch/seistream/pkg/waveform"
)

func newConditionCmd(root *rootOptions) *cobra.Command {
	var (
		in      string
		channel string
		out     string
		header  bool
	)

	cmd := &cobra.Command{
		Use:   "condition",
		Short: "Condition an on-disk CSV series into contiguous segments",
		RunE: func(cmd *cobra.Command, args []string) error {
			reader, err := csvio.NewReader(in,
				csvio.WithHeader(header), csvio.WithChannel(channel))
			if err != nil {
				return err
			}
			defer reader.Close()

			s, err := reader.Read(cmd.Context())
			if err != nil {
				return fmt.Errorf("reading %s: %w", in, err)
			}
			return writeSegments(root, s, out)
		},
	}

	f := cmd.Flags()
	f.StringVar(&in, "in", "", "input CSV file (timestamp,value)")
	f.StringVar(&channel, "channel", "", "channel label for the series")
	f.StringVar(&out, "out", "segments", "output file prefix")
	f.BoolVar(&header, "header", true, "input CSV has a header row")
	cobra.CheckErr(cmd.MarkFlagRequired("in"))
	return cmd
}

// writeSegments runs the pipeline and writes one CSV per segment, then
// logs a per-trace summary.
func writeSegments(root *rootOptions, s *series.Series, prefix string) error {
	asm, err := root.assembler()
	if err != nil {
		return err
	}
	segments, err := asm.Process(s)
	if err != nil {
		return err
	}

	stream, err := waveform.FromSegments(segments, waveform.ParseChannelID(s.Channel))
	if err != nil {
		return err
	}
	for i, seg := range segments {
		name := fmt.Sprintf("%s_%03d.csv", prefix, i)
		w, err := csvio.NewWriter(name)
		if err != nil {
			return err
		}
		if err := w.Write(seg); err != nil {
			w.Close()
			return err
		}
		if err := w.Close(); err != nil {
			return err
		}

		st := stream.Traces[i].Stats
		root.logger.Info("segment written", "file", name,
			"start", st.StartTime, "delta", st.Delta, "npts", st.Npts)
	}
	return nil
}
