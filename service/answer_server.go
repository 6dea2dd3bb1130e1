package service

import (
	"context"
	"net/http"

	"github.com/rs/cors"
	"go.uber.org/zap"

	"github.com/broadcastkit/conform/facade"
)

// AnswerServer hosts the callback endpoint an external responder posts
// answers to. It only exists when a responder is configured.
type AnswerServer struct {
	ctx    context.Context
	server *http.Server
}

func (a *AnswerServer) Start(ctx context.Context, addr string, bridge *facade.Bridge, log *zap.SugaredLogger) error {
	hdlr := http.NewServeMux()
	hdlr.Handle(facade.AnswerPath, facade.AnswerHandler(bridge, log))
	c := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type"},
	})
	server := &http.Server{
		Handler: c.Handler(hdlr),
		Addr:    addr,
	}
	a.server = server
	a.ctx = ctx
	return a.server.ListenAndServe()
}

func (a *AnswerServer) Shutdown() error {
	if a.server == nil {
		return nil
	}
	return a.server.Shutdown(a.ctx)
}
