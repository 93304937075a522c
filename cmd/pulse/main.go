// Command pulse runs the realtime presence/chat/notification node.
package main

import (
	"net/http"

	"go.uber.org/zap"

	_ "net/http/pprof"

	"github.com/localjobs/pulse/internal/auth"
	"github.com/localjobs/pulse/internal/config"
	"github.com/localjobs/pulse/internal/dispatch"
	"github.com/localjobs/pulse/internal/hub"
	"github.com/localjobs/pulse/internal/store"
)

func main() {
	logger, _ := zap.NewDevelopment()
	zap.ReplaceGlobals(logger)
	log := logger.Sugar()

	cfg, err := config.Load("./")
	if err != nil {
		log.Fatal("init config error:", err)
	}

	if cfg.PprofHost != "" {
		go func() {
			http.ListenAndServe(cfg.PprofHost, nil)
		}()
	}

	db, err := store.Open(cfg.DB, cfg.DBLog)
	if err != nil {
		log.Fatal("open db:", err)
	}
	if err := store.Migrate(db); err != nil {
		log.Fatal("migrate:", err)
	}

	var d dispatch.Dispatcher = dispatch.Nop{}
	if cfg.Redis.Enable {
		rd, err := dispatch.NewRedis(cfg.Redis.Host, cfg.Redis.Channel, log)
		if err != nil {
			log.Fatal("redis:", err)
		}
		defer rd.Close()
		d = rd
		log.Info("dispatcher: redis channel ", cfg.Redis.Channel)
	}

	h := hub.New(store.NewPostgres(db), d, auth.NewTokens(cfg.TokenSecret), cfg.NotifySecret, cfg.Client, log)

	m := http.NewServeMux()
	m.HandleFunc("/ws", h.ServeWs)
	m.HandleFunc("/notify", h.ServeNotify)
	m.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	log.Info("Start:", cfg.Host)
	if err := http.ListenAndServe(cfg.Host, m); err != nil {
		log.Fatal("ListenAndServe: ", err)
	}
}
