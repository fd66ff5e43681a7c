/*
Copyright © 2020 NAME HERE <EMAIL ADDRESS>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"

	"github.com/notargets/ddmesh/InputParameters"
	"github.com/notargets/ddmesh/cartesian"
	"github.com/notargets/ddmesh/mesh"
	"github.com/notargets/ddmesh/transport"
	"github.com/notargets/ddmesh/transport/nats"
	"github.com/notargets/ddmesh/utils"
)

type Build struct {
	CaseFile    string
	Transport   string
	Rank        int // -1 builds every rank in this process
	NatsURL     string
	MetricsAddr string
	Timeout     time.Duration
	Quiet       bool
}

// BuildCmd represents the build command
var BuildCmd = &cobra.Command{
	Use:   "build",
	Short: "Build the connectivity of a block decomposed mesh",
	Long: `
Generates the partitions described by a YAML case file and builds every
rank's connectivity, either in one process or one rank per process over NATS.

ddmesh build -I case.yaml --transport nats --rank 3`,
	RunE: func(cmd *cobra.Command, args []string) error {
		b := &Build{
			CaseFile:    viper.GetString("build.case"),
			Transport:   viper.GetString("build.transport"),
			Rank:        viper.GetInt("build.rank"),
			NatsURL:     viper.GetString("build.nats-url"),
			MetricsAddr: viper.GetString("build.metrics-addr"),
			Timeout:     viper.GetDuration("build.timeout"),
			Quiet:       viper.GetBool("build.quiet"),
		}
		cp, err := readCase(b.CaseFile)
		if err != nil {
			return err
		}
		b.merge(cp)
		out := io.Writer(os.Stdout)
		if b.Quiet {
			out = io.Discard
		}
		return RunBuild(cmd.Context(), b, cp, out)
	},
}

func init() {
	rootCmd.AddCommand(BuildCmd)
	flags := BuildCmd.Flags()
	flags.StringP("inputConditionsFile", "I", "", "YAML case file describing the decomposition")
	flags.StringP("transport", "t", "", "exchange transport: local or nats (default from case file, else local)")
	flags.IntP("rank", "r", -1, "build only this rank (nats transport), -1 builds all ranks")
	flags.String("nats-url", "", "NATS server URL (default $NATS_URL or nats://127.0.0.1:4222)")
	flags.String("metrics-addr", "", "serve Prometheus metrics on this address, e.g. :9090")
	flags.Duration("timeout", 0, "abort the build after this long, zero waits forever")
	flags.BoolP("quiet", "q", false, "do not print partition statistics")
	for key, flag := range map[string]string{
		"build.case":         "inputConditionsFile",
		"build.transport":    "transport",
		"build.rank":         "rank",
		"build.nats-url":     "nats-url",
		"build.metrics-addr": "metrics-addr",
		"build.timeout":      "timeout",
		"build.quiet":        "quiet",
	} {
		_ = viper.BindPFlag(key, flags.Lookup(flag))
	}
}

func readCase(file string) (cp *InputParameters.CaseParameters, err error) {
	if len(file) == 0 {
		exampleFile := `
########################################
Title: "Test Case"
Cells: [8, 8]
Ranks: [2, 2]
Extent: [1., 1.]
BCs:
  xmin: Inflow
  xmax: Out
  ymin: Wall
  ymax: Wall
########################################
`
		return nil, fmt.Errorf("must supply a case file (-I, --inputConditionsFile), example:%s", exampleFile)
	}
	var data []byte
	if data, err = os.ReadFile(file); err != nil {
		return
	}
	cp = &InputParameters.CaseParameters{}
	if err = cp.Parse(data); err != nil {
		return nil, err
	}
	return
}

// merge fills settings left unset on the command line from the case file
func (b *Build) merge(cp *InputParameters.CaseParameters) {
	if b.Transport == "" {
		b.Transport = cp.Transport
	}
	if b.Transport == "" {
		b.Transport = "local"
	}
	if b.NatsURL == "" {
		b.NatsURL = cp.NatsURL
	}
	if b.Timeout == 0 && cp.Timeout > 0 {
		b.Timeout = time.Duration(cp.Timeout * float64(time.Second))
	}
}

// RunBuild generates the case's partitions and builds them, printing each
// rank's statistics to out in rank order
func RunBuild(ctx context.Context, b *Build, cp *InputParameters.CaseParameters, out io.Writer) (err error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if b.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, b.Timeout)
		defer cancel()
	}
	d, err := cp.Decomposition()
	if err != nil {
		return err
	}
	size := d.NumRanks()
	if b.Rank < -1 || b.Rank >= size {
		return fmt.Errorf("rank %d outside [0,%d)", b.Rank, size)
	}
	log := logrus.WithFields(logrus.Fields{"case": cp.Title, "ranks": size, "transport": b.Transport})

	reg := prometheus.NewRegistry()
	met := mesh.NewMetrics(reg)
	if b.MetricsAddr != "" {
		srv := &http.Server{Addr: b.MetricsAddr, Handler: promhttp.HandlerFor(reg, promhttp.HandlerOpts{})}
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.WithError(err).Error("metrics server stopped")
			}
		}()
		defer srv.Close()
	}

	ranks := []int{b.Rank}
	if b.Rank == -1 {
		ranks = make([]int, size)
		for r := range ranks {
			ranks[r] = r
		}
	}
	descs := make([]*mesh.Description, size)
	for _, r := range ranks {
		if descs[r], err = d.Rank(r); err != nil {
			return err
		}
	}
	if b.Rank == -1 && d.Dimension() == 2 {
		if err = cartesian.CheckInterfaces(descs); err != nil {
			return err
		}
	}

	var connect func(rank int) (transport.Transport, func(), error)
	switch b.Transport {
	case "local":
		if b.Rank != -1 {
			return fmt.Errorf("the local transport builds all ranks, use --transport nats for --rank")
		}
		w := transport.NewWorld(size, 0)
		connect = func(rank int) (transport.Transport, func(), error) {
			return w.Endpoint(rank), func() {}, nil
		}
	case "nats":
		conn := nats.ConnectDefault()
		if b.NatsURL != "" {
			conn = nats.ConnectURL(b.NatsURL)
		}
		conn = nats.ReuseConnection(conn)
		connect = func(rank int) (transport.Transport, func(), error) {
			tp, err := nats.New(nats.Config{
				Connect:       conn,
				Log:           log,
				SubjectPrefix: cp.SubjectPrefix,
				Rank:          rank,
				Size:          size,
			})
			if err != nil {
				return nil, nil, err
			}
			return tp, func() { _ = tp.Close() }, nil
		}
	default:
		return fmt.Errorf("unknown transport %q, want local or nats", b.Transport)
	}

	start := time.Now()
	meshes := make([]*mesh.Mesh, size)
	g, gctx := errgroup.WithContext(ctx)
	for _, r := range ranks {
		g.Go(func() error {
			tp, done, err := connect(r)
			if err != nil {
				return err
			}
			defer done()
			meshes[r], err = mesh.NewMesh(gctx, descs[r], tp,
				mesh.WithLogger(log), mesh.WithMetrics(met))
			return err
		})
	}
	if err = g.Wait(); err != nil {
		return err
	}
	log.WithField("elapsed", time.Since(start)).Info("build complete")
	log.Debug(utils.GetMemUsage())

	for _, r := range ranks {
		meshes[r].PrintStatistics(out)
	}
	return nil
}
