package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/statement-engine/internal/model"
	"github.com/sells-group/statement-engine/internal/store"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the statement API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		p, st, err := initPipeline(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		mux := http.NewServeMux()

		mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
		})

		mux.HandleFunc("GET /statements", func(w http.ResponseWriter, r *http.Request) {
			q := r.URL.Query()
			filter := store.StatementFilter{
				CIK:  q.Get("cik"),
				Role: q.Get("role"),
				View: q.Get("view"),
			}
			recs, err := st.ListStatements(r.Context(), filter)
			if err != nil {
				zap.L().Error("list statements failed", zap.Error(err))
				http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
				return
			}
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(recs)
		})

		mux.HandleFunc("GET /statements/{cik}/{role}", func(w http.ResponseWriter, r *http.Request) {
			cik := r.PathValue("cik")
			role, err := model.ParseRole(r.PathValue("role"))
			if err != nil {
				http.Error(w, `{"error":"unknown statement role"}`, http.StatusBadRequest)
				return
			}
			view := r.URL.Query().Get("view")
			if view == "" {
				view = cfg.Render.View
			}
			stitched := r.URL.Query().Get("stitched") == "true"

			tbl, err := st.GetStatement(r.Context(), cik, string(role), view, stitched)
			if err != nil {
				zap.L().Error("get statement failed", zap.Error(err))
				http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
				return
			}
			if tbl == nil {
				http.Error(w, `{"error":"statement not found"}`, http.StatusNotFound)
				return
			}
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(tbl)
		})

		mux.HandleFunc("POST /build", func(w http.ResponseWriter, r *http.Request) {
			var req struct {
				CIK string `json:"cik"`
			}
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				http.Error(w, `{"error":"invalid request body"}`, http.StatusBadRequest)
				return
			}
			if req.CIK == "" {
				http.Error(w, `{"error":"cik is required"}`, http.StatusBadRequest)
				return
			}

			// Run the build asynchronously
			go func() {
				res, err := p.Build(ctx, req.CIK)
				if err != nil {
					zap.L().Error("build failed",
						zap.String("cik", req.CIK),
						zap.Error(err),
					)
					return
				}
				zap.L().Info("build complete",
					zap.String("cik", req.CIK),
					zap.Int("statements", len(res.Tables)),
				)
			}()

			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusAccepted)
			json.NewEncoder(w).Encode(map[string]string{
				"status": "accepted",
				"cik":    req.CIK,
			})
		})

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: mux,
		}

		// Graceful shutdown: the signal context is already canceled by the
		// time we get here, so drain in-flight requests on a fresh deadline.
		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				zap.L().Warn("server shutdown", zap.Error(err))
			}
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
