package bot

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"looseroles/model"
	"looseroles/utils/database"

	"github.com/bwmarrin/discordgo"
	"github.com/jmoiron/sqlx"
)

// BotProvider defines the methods the scheduler needs from the Bot.
type BotProvider interface {
	GetConfig() *model.Config
	GetDB() *sqlx.DB
	GetSession() *discordgo.Session
}

// MessageFetcher looks up a single message. *discordgo.Session implements it.
type MessageFetcher interface {
	ChannelMessage(channelID, messageID string, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// Scheduler manages all scheduled tasks.
type Scheduler struct {
	bot      BotProvider
	done     chan struct{}
	wg       sync.WaitGroup
	stopOnce sync.Once
}

// NewScheduler creates a new scheduler.
func NewScheduler(bot BotProvider) *Scheduler {
	return &Scheduler{
		bot:  bot,
		done: make(chan struct{}),
	}
}

// Start begins all scheduled tasks.
func (s *Scheduler) Start() {
	s.wg.Add(1)
	go s.startMessagePruner()
}

// Stop terminates all scheduled tasks gracefully.
func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() {
		slog.Info("stopping scheduler")
		close(s.done)
		s.wg.Wait()
	})
}

func (s *Scheduler) startMessagePruner() {
	defer s.wg.Done()
	interval := s.bot.GetConfig().PruneInterval
	if interval <= 0 {
		slog.Info("self-assign message pruning is disabled")
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			ctx, cancel := context.WithCancel(context.Background())
			go func() {
				select {
				case <-s.done:
					cancel()
				case <-ctx.Done():
				}
			}()
			pruned, err := PruneSelfAssignMessages(ctx, s.bot.GetDB(), s.bot.GetSession())
			cancel()
			if err != nil {
				slog.Error("pruning self-assign messages failed", "error", err)
				continue
			}
			if pruned > 0 {
				slog.Info("pruned deleted self-assign messages", "count", pruned)
			}
		case <-s.done:
			return
		}
	}
}

// PruneSelfAssignMessages stops tracking self-assign messages that were
// deleted from Discord. Other lookup failures leave the record alone.
func PruneSelfAssignMessages(ctx context.Context, db *sqlx.DB, fetcher MessageFetcher) (int, error) {
	msgs, err := database.GetSelfAssignMessages(db)
	if err != nil {
		return 0, err
	}

	pruned := 0
	for _, m := range msgs {
		if ctx.Err() != nil {
			return pruned, ctx.Err()
		}
		_, err := fetcher.ChannelMessage(m.ChannelID, m.MessageID, discordgo.WithContext(ctx))
		if err == nil {
			continue
		}
		var restErr *discordgo.RESTError
		if !errors.As(err, &restErr) || restErr.Response == nil || restErr.Response.StatusCode != http.StatusNotFound {
			slog.Warn("could not check self-assign message", "message_id", m.MessageID, "error", err)
			continue
		}
		if err := database.DeleteSelfAssignMessage(db, m.MessageID); err != nil {
			return pruned, err
		}
		pruned++
	}
	return pruned, nil
}
