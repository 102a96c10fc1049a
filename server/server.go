package server

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"SpectraFM/config"
	"SpectraFM/core/audio"
	"SpectraFM/core/player"
	"SpectraFM/core/spectrum"
	"SpectraFM/core/viz"
	"SpectraFM/dropdir"
	"SpectraFM/logger"
	"SpectraFM/model"
	"SpectraFM/registry"
	"SpectraFM/storage"

	"github.com/gorilla/mux"
)

// statePushInterval is the cadence of the periodic status broadcast, the
// analog of the platform's timeupdate events.
const statePushInterval = 250 * time.Millisecond

// Start initializes and runs the HTTP server until SIGINT/SIGTERM.
func Start() {
	cfg := config.Load()

	logger.InitLogger(logger.Config{
		Level:      logger.LogLevel(cfg.LogLevel),
		OutputPath: cfg.LogPath,
		MaxSize:    cfg.LogMaxSizeMB,
		MaxBackups: cfg.LogMaxBackups,
		MaxAge:     cfg.LogMaxAgeDays,
	})

	store, err := newStore(cfg)
	if err != nil {
		logger.Fatal("store init failed", logger.ErrorField(err))
	}
	reg := registry.New(store, registry.NewMP3Prober())

	hub := NewHub()

	analyzer := spectrum.NewAnalyzer()
	sampler := spectrum.NewSampler(analyzer, cfg.FrameRate, func(snap spectrum.Snapshot) {
		// The sampler only runs while playing, so every published frame
		// renders live bars.
		hub.Broadcast(MsgTypeSpectrum, viz.Bars(snap, true))
	})

	engine := newEngine(cfg)
	controller := player.New(engine, reg, sampler, cfg.Volume)
	controller.SetOnChange(func(st model.Status) {
		hub.Broadcast(MsgTypeState, st)
	})

	apiHandler := NewAPIHandler(reg, controller, sampler, hub, cfg)

	var watcher *dropdir.Watcher
	if cfg.DropDir != "" {
		watcher, err = dropdir.New(cfg.DropDir, reg, func(level, msg string) {
			hub.Notice(level, msg)
		})
		if err != nil {
			logger.Fatal("drop directory watcher failed", logger.ErrorField(err))
		}
		watcher.OnAdded(func() {
			hub.Broadcast(MsgTypePlaylist, reg.List())
		})
	}

	router := newRouter(apiHandler, cfg.WebAppDir)

	httpServer := &http.Server{
		Addr:         cfg.ServerAddr,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 0, // WebSocket and media streaming hold connections open
		IdleTimeout:  120 * time.Second,
	}

	rootCtx, cancelRoot := context.WithCancel(context.Background())
	defer cancelRoot()

	if watcher != nil {
		go watcher.Run(rootCtx)
	}
	go pushState(rootCtx, hub, controller)

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("server starting",
			logger.String("addr", cfg.ServerAddr),
			logger.String("engine", cfg.AudioEngine),
			logger.String("store", cfg.StoreBackend),
		)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", logger.ErrorField(err))
		}
	}()

	<-stop
	logger.Info("shutting down")
	cancelRoot()

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Warn("forced shutdown", logger.ErrorField(err))
	}

	// Teardown order: playback first (stops sampling and releases the
	// output), then the registry (revokes every locator), then the sockets.
	if watcher != nil {
		watcher.Close()
	}
	controller.Close()
	reg.Close(context.Background())
	hub.Close()

	logger.Info("server stopped")
}

func newRouter(apiHandler *APIHandler, webAppDir string) *mux.Router {
	router := mux.NewRouter()
	router.Use(corsMiddleware)

	router.HandleFunc("/api/tracks", apiHandler.UploadTracksHandler).Methods(http.MethodPost)
	router.HandleFunc("/api/tracks", apiHandler.GetTracksHandler).Methods(http.MethodGet)
	router.HandleFunc("/api/tracks/{id}", apiHandler.DeleteTrackHandler).Methods(http.MethodDelete)

	router.HandleFunc("/api/player", apiHandler.GetPlayerHandler).Methods(http.MethodGet)
	router.HandleFunc("/api/player/select", apiHandler.SelectTrackHandler).Methods(http.MethodPost)
	router.HandleFunc("/api/player/toggle", apiHandler.TogglePlayHandler).Methods(http.MethodPost)
	router.HandleFunc("/api/player/seek", apiHandler.SeekHandler).Methods(http.MethodPost)
	router.HandleFunc("/api/player/volume", apiHandler.VolumeHandler).Methods(http.MethodPost)
	router.HandleFunc("/api/player/live", apiHandler.LiveHandler).Methods(http.MethodPost)
	router.HandleFunc("/api/player/spectrum", apiHandler.GetSpectrumHandler).Methods(http.MethodGet)

	router.HandleFunc("/ws", apiHandler.WebSocketHandler)

	router.PathPrefix("/media/").HandlerFunc(apiHandler.MediaHandler).Methods(http.MethodGet)

	// Frontend UI serving
	router.PathPrefix("/").Handler(http.FileServer(http.Dir(webAppDir)))

	return router
}

func newStore(cfg *config.Config) (storage.Store, error) {
	switch cfg.StoreBackend {
	case "minio":
		return storage.NewMinioStore(cfg)
	default:
		return storage.NewMemoryStore(), nil
	}
}

func newEngine(cfg *config.Config) audio.Engine {
	if cfg.AudioEngine == "silent" {
		return audio.NewSilentEngine()
	}
	return audio.NewBeepEngine()
}

// pushState broadcasts the playback status at timeupdate cadence while
// anyone is listening.
func pushState(ctx context.Context, hub *Hub, controller *player.Controller) {
	ticker := time.NewTicker(statePushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if hub.ClientCount() > 0 {
				hub.Broadcast(MsgTypeState, controller.Status())
			}
		}
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS, HEAD")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Range")
		w.Header().Set("Access-Control-Expose-Headers", "Content-Length, Content-Range")
		w.Header().Set("Access-Control-Max-Age", "86400") // 24 hours

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
