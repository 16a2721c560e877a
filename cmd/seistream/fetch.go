package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/volcwatch/seistream/pkg/series"
	"github.com/volcwatch/seistream/pkg/valve"
)

type fetchOptions struct {
	dataset    string
	channel    string
	start      string
	end        string
	timezone   string
	seriesID   string
	rank       int
	baseline   string
	downsample string
	dsint      int
	out        string
}

func newFetchCmd(root *rootOptions) *cobra.Command {
	opts := &fetchOptions{}

	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Fetch a series from Valve and write conditioned segments",
		RunE: func(cmd *cobra.Command, args []string) error {
			if root.host == "" {
				return fmt.Errorf("no valve host configured (set host in %s)", root.configPath)
			}
			client, err := valve.NewClient(root.host, valve.WithLogger(root.logger))
			if err != nil {
				return err
			}

			q := valve.Query{
				Channel:          opts.channel,
				Start:            opts.start,
				End:              opts.end,
				Timezone:         opts.timezone,
				Series:           opts.seriesID,
				Rank:             opts.rank,
				Baseline:         opts.baseline,
				Downsample:       opts.downsample,
				DownsampleFactor: opts.dsint,
			}
			s, err := fetchDataset(cmd, client, opts.dataset, q)
			if err != nil {
				return err
			}
			return writeSegments(root, s, opts.out)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.dataset, "dataset", "rsam", "dataset: rsam, tilt, strain, flyspec, rtnet, gps or triggers")
	f.StringVar(&opts.channel, "channel", "", "channel name, $-separated (e.g. NPT$HWZ$HV)")
	f.StringVar(&opts.start, "start", "", "start time (yyyy[MMdd[hhmm[ss]]] or relative, e.g. -12h)")
	f.StringVar(&opts.end, "end", "", "end time (optional)")
	f.StringVar(&opts.timezone, "timezone", "utc", "timezone of returned data")
	f.StringVar(&opts.seriesID, "series", "", "data column for multi-column datasets")
	f.IntVar(&opts.rank, "rank", 0, "processing rank where supported")
	f.StringVar(&opts.baseline, "baseline", "", "baseline station for gps length")
	f.StringVar(&opts.downsample, "downsample", "", "service-side downsampling: none, mean or decimate")
	f.IntVar(&opts.dsint, "dsint", 10, "downsampling factor")
	f.StringVar(&opts.out, "out", "segments", "output file prefix")
	cobra.CheckErr(cmd.MarkFlagRequired("channel"))
	cobra.CheckErr(cmd.MarkFlagRequired("start"))
	return cmd
}

func fetchDataset(cmd *cobra.Command, client *valve.Client, dataset string, q valve.Query) (*series.Series, error) {
	ctx := cmd.Context()
	switch dataset {
	case "rsam":
		return client.RSAM(ctx, q)
	case "tilt":
		return client.Tilt(ctx, q)
	case "strain":
		return client.Strain(ctx, q)
	case "flyspec":
		return client.FlySpec(ctx, q)
	case "rtnet":
		return client.RTNet(ctx, q)
	case "gps":
		return client.GPSLength(ctx, q)
	case "triggers":
		return client.Triggers(ctx, q)
	default:
		return nil, fmt.Errorf("unknown dataset %q", dataset)
	}
}

func newInfoCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "info <dataset>",
		Short: "Print the service's description of a dataset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if root.host == "" {
				return fmt.Errorf("no valve host configured (set host in %s)", root.configPath)
			}
			client, err := valve.NewClient(root.host, valve.WithLogger(root.logger))
			if err != nil {
				return err
			}
			info, err := client.DatasetInfo(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			cmd.Println(info)
			return nil
		},
	}
}
