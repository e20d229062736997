package cmd

import (
	"context"
	"errors"
	"net"

	"github.com/foomo/keel"
	"github.com/foomo/keel/healthz"
	"github.com/foomo/keel/service"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/net/netutil"

	"github.com/mindloom/insightserver/pkg/handler"
)

func NewSocketCommand() *cobra.Command {
	v := newViper()

	cmd := &cobra.Command{
		Use:   "socket <url>",
		Short: "Start socket server",
		Args:  cobra.ExactArgs(1),
		ValidArgsFunction: func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
			var comps []string
			if len(args) == 0 {
				comps = cobra.AppendActiveHelp(comps, "You must specify the URL the archive is published on")
			} else {
				comps = cobra.AppendActiveHelp(comps, "This command does not take any more arguments")
			}
			return comps, cobra.ShellCompDirectiveNoFileComp
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			svr := keel.NewServer(
				keel.WithHTTPPrometheusService(servicePrometheusEnabledFlag(v)),
				keel.WithHTTPHealthzService(serviceHealthzEnabledFlag(v)),
				keel.WithPrometheusMeter(servicePrometheusEnabledFlag(v)),
				keel.WithGracefulPeriod(gracefulPeriodFlag(v)),
				keel.WithOTLPGRPCTracer(otelEnabledFlag(v)),
			)

			l := svr.Logger()

			a, history, err := newArchive(cmd.Context(), v, l, args[0])
			if err != nil {
				return err
			}

			isLoadedHealthzerFn := healthz.NewHealthzerFn(func(ctx context.Context) error {
				if !a.Loaded() {
					return errors.New("archive not loaded yet")
				}
				return nil
			})
			svr.AddStartupHealthzers(isLoadedHealthzerFn)
			svr.AddReadinessHealthzers(isLoadedHealthzerFn)

			svr.AddClosers(func(ctx context.Context) error {
				return history.Close()
			})

			handle := handler.NewSocket(l.Named("inst.handler"), a)

			ln, err := net.Listen("tcp", addressFlag(v))
			if err != nil {
				return err
			}
			ln = netutil.LimitListener(ln, socketMaxConnectionsFlag(v))

			svr.AddServices(
				service.NewGoRoutine(l.Named("go.archive"), "archive", func(ctx context.Context, l *zap.Logger) error {
					return a.Start(ctx)
				}),
				service.NewGoRoutine(l.Named("go.socket"), "socket", func(ctx context.Context, l *zap.Logger) error {
					go func() {
						<-ctx.Done()
						_ = ln.Close()
					}()
					l.Info("started listening", zap.String("address", addressFlag(v)))
					for {
						// this blocks until connection or error
						conn, err := ln.Accept()
						if err != nil {
							if ctx.Err() != nil {
								return nil
							}
							l.Error("could not accept connection", zap.Error(err))
							continue
						}
						go handle.Serve(conn)
					}
				}),
			)

			svr.Run()
			return nil
		},
	}

	flags := cmd.Flags()
	addAddressFlag(flags, v)
	addPollFlag(flags, v)
	addPollIntervalFlag(flags, v)
	addHistoryDirFlag(flags, v)
	addHistoryLimitFlag(flags, v)
	addGracefulPeriodFlag(flags, v)
	addOtelEnabledFlag(flags, v)
	addServiceHealthzEnabledFlag(flags, v)
	addServicePrometheusEnabledFlag(flags, v)
	addStorageTypeFlag(flags, v)
	addStorageBlobBucketFlag(flags, v)
	addStorageBlobPrefixFlag(flags, v)
	addArchiveTimeoutFlag(flags, v)
	addSocketMaxConnectionsFlag(flags, v)

	return cmd
}
