// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"database/sql"
	"net/http"

	"github.com/danielhkuo/forkful/cliparse"
	"github.com/danielhkuo/forkful/handlers"
	"github.com/danielhkuo/forkful/middleware"
	"github.com/danielhkuo/forkful/places"
	"github.com/danielhkuo/forkful/realtime"
	"github.com/danielhkuo/forkful/rounds"
	"github.com/danielhkuo/forkful/session"
	"github.com/danielhkuo/forkful/timer"
	"github.com/danielhkuo/forkful/vote"
)

func NewRouter(db *sql.DB, cfg cliparse.Config, hub *realtime.Hub) *http.ServeMux {
	mux := http.NewServeMux()

	// Wire services: the timer delegates round boundaries to the coordinator
	// so timer expiry and host action share one transition code path.
	source := places.NewStaticSource()
	sessions := session.NewService(db, hub, source, cfg.MaxDurationHours)
	coordinator := rounds.NewCoordinator(db, hub)
	votes := vote.NewProcessor(db, hub)
	timers := timer.NewService(db, hub, coordinator)

	sessionHandler := handlers.NewSessionHandler(db, sessions, timers)
	voteHandler := handlers.NewVoteHandler(votes)
	roundHandler := handlers.NewRoundHandler(coordinator, timers)
	eventsHandler := handlers.NewEventsHandler(db, hub)

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Session lifecycle
	mux.HandleFunc("POST /sessions", middleware.WithLogging(sessionHandler.CreateSession))
	mux.HandleFunc("POST /sessions/join", middleware.WithLogging(sessionHandler.JoinSession))
	mux.HandleFunc("GET /sessions/{id}", middleware.WithLogging(sessionHandler.GetSession))
	mux.HandleFunc("POST /sessions/{id}/start", middleware.WithLogging(sessionHandler.StartSession))
	mux.HandleFunc("POST /sessions/{id}/end", middleware.WithLogging(sessionHandler.EndSession))
	mux.HandleFunc("GET /sessions/{id}/participants", middleware.WithLogging(sessionHandler.Participants))
	mux.HandleFunc("GET /sessions/{id}/restaurants", middleware.WithLogging(sessionHandler.Restaurants))
	mux.HandleFunc("GET /sessions/{id}/winner", middleware.WithLogging(sessionHandler.Winner))

	// Rounds
	mux.HandleFunc("GET /sessions/{id}/round", middleware.WithLogging(roundHandler.RoundStatus))
	mux.HandleFunc("GET /sessions/{id}/results", middleware.WithLogging(roundHandler.Results))
	mux.HandleFunc("POST /sessions/{id}/round/transition", middleware.WithLogging(roundHandler.TransitionRound))
	mux.HandleFunc("POST /sessions/{id}/round/complete", middleware.WithLogging(roundHandler.CompleteSession))

	// Voting
	mux.HandleFunc("POST /votes", middleware.WithLogging(voteHandler.SubmitVote))
	mux.HandleFunc("GET /sessions/{id}/votes/remaining", middleware.WithLogging(voteHandler.RemainingVotes))
	mux.HandleFunc("DELETE /sessions/{id}/votes/{userId}", middleware.WithLogging(voteHandler.ResetVotes))

	// Realtime events (websocket; logs its own lifecycle)
	mux.HandleFunc("GET /sessions/{id}/events", eventsHandler.Subscribe)

	// Root endpoint
	mux.HandleFunc("GET /", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("forkful API v1"))
	})

	return mux
}
