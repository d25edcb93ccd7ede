// Package bot wires the Discord session to the ticket components and
// owns their lifecycle.
package bot

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/codexdev/ticketbot/src/ticketbot/commands"
	"github.com/codexdev/ticketbot/src/ticketbot/components/events"
	"github.com/codexdev/ticketbot/src/ticketbot/components/guard"
	"github.com/codexdev/ticketbot/src/ticketbot/components/lifecycle"
	"github.com/codexdev/ticketbot/src/ticketbot/components/panel"
	"github.com/codexdev/ticketbot/src/ticketbot/components/rating"
	"github.com/codexdev/ticketbot/src/ticketbot/data"
)

const janitorInterval = time.Minute

type Config struct {
	Token   string
	GuildID string
	DB      *gorm.DB
	Redis   *redis.Client
}

type Bot struct {
	session  *discordgo.Session
	db       *gorm.DB
	rdb      *redis.Client
	config   Config
	store    *data.Store
	manager  *lifecycle.Manager
	panels   *panel.Service
	ratings  *rating.Service
	sessions *lifecycle.SessionStore
	handler  *commands.Handler
	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup
}

func New(config Config) (*Bot, error) {
	dg, err := discordgo.New("Bot " + config.Token)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())

	bot := &Bot{
		session: dg,
		db:      config.DB,
		rdb:     config.Redis,
		config:  config,
		ctx:     ctx,
		cancel:  cancel,
	}

	bot.initializeComponents()
	bot.registerHandlers()

	dg.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMessages |
		discordgo.IntentsDirectMessages

	return bot, nil
}

func (b *Bot) initializeComponents() {
	b.store = data.NewStore(b.db)
	publisher := events.NewPublisher(b.rdb)

	b.panels = panel.New(b.store)
	b.ratings = rating.New(b.store, publisher)
	b.manager = lifecycle.NewManager(b.store, guard.New(b.store, guard.DefaultCooldown), b.ratings, publisher)
	b.sessions = lifecycle.NewSessionStore(lifecycle.DefaultSessionTTL)

	b.handler = commands.NewHandler(b.ctx, commands.Config{
		Store:    b.store,
		Manager:  b.manager,
		Panels:   b.panels,
		Ratings:  b.ratings,
		Sessions: b.sessions,
	})
}

func (b *Bot) registerHandlers() {
	b.session.AddHandler(b.handleReady)
	b.session.AddHandler(b.handler.HandleInteraction)
}

func (b *Bot) Start() error {
	return b.session.Open()
}

func (b *Bot) Stop() {
	b.cancel()
	b.wg.Wait()
	b.session.Close()
}

// Store exposes the data layer for the web server.
func (b *Bot) Store() *data.Store {
	return b.store
}

// Sessions exposes the wizard session store for the web server.
func (b *Bot) Sessions() *lifecycle.SessionStore {
	return b.sessions
}

func (b *Bot) handleReady(s *discordgo.Session, event *discordgo.Ready) {
	log.Printf("Discord bot logged in as %s", event.User.Username)

	b.manager.SetBotUser(event.User.ID)

	if err := commands.Register(s, event.User.ID, b.config.GuildID); err != nil {
		log.Printf("Failed to register commands: %v", err)
	}

	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		b.sessions.RunJanitor(b.ctx, janitorInterval)
	}()
}
