package main

import(
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/net/context"
	"golang.org/x/sync/errgroup"
	"github.com/spf13/cobra"
	hw "github.com/skypies/util/handlerware"

	"github.com/skypies/flytau/audit"
	"github.com/skypies/flytau/config"
	"github.com/skypies/flytau/rpc"
	"github.com/skypies/flytau/ui"
)

const kRequestTimeout = 55 * time.Second

// newHTTPServer bounds every request. The timeout handler cancels r.Context() when time is
// up, so the ctx maker can hand it to the handlers as is.
func newHTTPServer(addr string, mux *http.ServeMux, timeout time.Duration) *http.Server {
	return &http.Server{
		Addr: addr,
		Handler: http.TimeoutHandler(mux, timeout, "request timed out"),
	}
}

func serveCmd() *cobra.Command {
	var fHttpPort, fGrpcPort int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the JSON API and the gRPC service",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e,err := newEnv()
			if err != nil { return err }
			defer e.Close()

			if fHttpPort == 0 { fHttpPort = config.GetInt("http.port") }
			if fGrpcPort == 0 { fGrpcPort = config.GetInt("grpc.port") }

			var pub audit.Publisher
			if fAudit {
				project := config.Get("audit.project")
				if project == "" { project = config.Get("datastore.project") }
				bq,err := audit.NewBigQueryPublisher(e.ctx, project, config.Get("audit.dataset"),
					config.Get("audit.table"))
				if err != nil { return err }
				defer bq.Close()
				bq.Log = e.Log
				pub = bq
			}

			ctx,stop := signal.NotifyContext(e.ctx, os.Interrupt, syscall.SIGTERM)
			defer stop()

			hw.CtxMakerCallback = func(r *http.Request) context.Context { return r.Context() }
			mux := http.NewServeMux()
			ui.AddHandlers(mux, e.Desk, pub)
			httpSrv := newHTTPServer(fmt.Sprintf(":%d", fHttpPort), mux, kRequestTimeout)

			grpcSrv := rpc.NewServer(e.Desk)
			lis,err := net.Listen("tcp", fmt.Sprintf(":%d", fGrpcPort))
			if err != nil { return err }

			g,gctx := errgroup.WithContext(ctx)
			g.Go(func() error {
				e.Log.Infof("http listening on %s", httpSrv.Addr)
				if err := httpSrv.ListenAndServe(); err != http.ErrServerClosed { return err }
				return nil
			})
			g.Go(func() error {
				e.Log.Infof("grpc listening on %s", lis.Addr())
				return grpcSrv.Serve(lis)
			})
			g.Go(func() error {
				<-gctx.Done()
				e.Log.Infof("shutting down")
				grpcSrv.GracefulStop()
				sctx,cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				return httpSrv.Shutdown(sctx)
			})

			fmt.Printf("serving http on :%d, grpc on :%d\n", fHttpPort, fGrpcPort)
			return g.Wait()
		},
	}

	cmd.Flags().IntVar(&fHttpPort, "http-port", 0, "HTTP port (default from config)")
	cmd.Flags().IntVar(&fGrpcPort, "grpc-port", 0, "gRPC port (default from config)")
	return cmd
}
