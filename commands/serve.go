package commands

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/gorilla/mux"
	"github.com/spf13/cobra"

	"listings-pipeline/config"
	"listings-pipeline/dispatch"
	"listings-pipeline/models"
	"listings-pipeline/storage"
	"listings-pipeline/utils"
)

const maxEventBytes = 1 << 20

func init() {
	rootCmd.AddCommand(serveCmd, lambdaCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Accepts trigger payloads on POST /events.",
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := newPipeline(cmd.Context(), cfg, logger)
		if err != nil {
			return err
		}
		defer p.Close()

		srv := &http.Server{
			Addr:              cfg.HTTPAddr,
			Handler:           newRouter(p.dispatcher, logger),
			ReadHeaderTimeout: 10 * time.Second,
		}
		go func() {
			<-cmd.Context().Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			srv.Shutdown(shutdownCtx)
		}()

		logger.Info("[serve] Listening on %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	},
}

var lambdaCmd = &cobra.Command{
	Use:   "lambda",
	Short: "Runs as an AWS Lambda handler.",
	Run: func(cmd *cobra.Command, args []string) {
		StartLambda(cmd.Context(), cfg, logger)
	},
}

// StartLambda hands the dispatcher to the Lambda runtime. It does not return.
func StartLambda(ctx context.Context, c *config.Config, l *utils.Logger) {
	p, err := newPipeline(ctx, c, l)
	if err != nil {
		l.Error("[lambda] Startup failed: %v", err)
		panic(err)
	}
	lambda.Start(p.dispatcher.Handle)
}

type eventHandler interface {
	Handle(ctx context.Context, payload json.RawMessage) (models.Result, error)
}

func newRouter(h eventHandler, logger *utils.Logger) *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		io.WriteString(w, "ok")
	}).Methods(http.MethodGet)

	r.HandleFunc("/events", func(w http.ResponseWriter, req *http.Request) {
		payload, err := io.ReadAll(io.LimitReader(req.Body, maxEventBytes))
		if err != nil {
			writeJSON(w, http.StatusBadRequest, models.Result{Status: models.StatusError, Message: err.Error()})
			return
		}

		res, err := h.Handle(req.Context(), payload)
		if err != nil {
			logger.Error("[serve] %v", err)
			writeJSON(w, statusFor(err), models.Result{Status: models.StatusError, Message: err.Error()})
			return
		}
		writeJSON(w, http.StatusOK, res)
	}).Methods(http.MethodPost)

	return r
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, dispatch.ErrMalformedNotification):
		return http.StatusBadRequest
	case errors.Is(err, storage.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
