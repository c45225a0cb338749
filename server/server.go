package server

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"sync"
	"sync/atomic"

	"readnext/db"
	"readnext/models"
	"readnext/policy"
	"readnext/relevance"
	"readnext/tree"
	"readnext/update"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"github.com/valyala/fasthttp"
)

type ServerConfig struct {
	Store       *db.Store
	Tree        *tree.Tree
	Policy      *policy.Policy
	Engine      *relevance.Engine
	Coordinator *update.Coordinator
}

// Broadcaster fans update progress events out to SSE clients.
type Broadcaster struct {
	sync.RWMutex
	clients map[string]chan models.ProgressEvent
}

func NewBroadcaster() *Broadcaster {
	return &Broadcaster{
		clients: make(map[string]chan models.ProgressEvent),
	}
}

func (b *Broadcaster) Broadcast(event models.ProgressEvent) {
	b.RLock()
	defer b.RUnlock()

	for id, client := range b.clients {
		select {
		case client <- event: // Non-blocking send
		default:
			log.Warnf("Client channel full, skipping progress for client: %v", id)
		}
	}
}

func (b *Broadcaster) AddClient(key string, client chan models.ProgressEvent) {
	b.Lock()
	defer b.Unlock()
	b.clients[key] = client
}

func (b *Broadcaster) RemoveClient(key string) {
	b.Lock()
	defer b.Unlock()

	if client, ok := b.clients[key]; ok {
		close(client)
		delete(b.clients, key)
	}
}

// Server wires the store, counters, selection policy and relevance engine
// into the HTTP API the presentation layer consumes.
func Server(config *ServerConfig) *fiber.App {
	app := fiber.New()

	app.Use(compress.New())
	app.Use(cors.New())
	app.Use(requestid.New())

	broadcaster := NewBroadcaster()
	var updating atomic.Bool

	app.Get("/folders", func(c *fiber.Ctx) error {
		folders, err := config.Store.Folders()
		if err != nil {
			return err
		}
		if folders == nil {
			folders = []models.Folder{}
		}
		return c.JSON(folders)
	})

	// Persist whether a folder is shown expanded in the tree view.
	app.Post("/folders/:title/expanded", func(c *fiber.Ctx) error {
		if err := config.Store.SetFolderExpanded(c.Params("title"), c.QueryBool("value", true)); err != nil {
			return err
		}
		return c.SendStatus(fiber.StatusNoContent)
	})

	app.Get("/channels", func(c *fiber.Ctx) error {
		channels, err := config.Store.Channels()
		if err != nil {
			return err
		}
		if channels == nil {
			channels = []models.Channel{}
		}
		return c.JSON(channels)
	})

	app.Get("/counts", func(c *fiber.Ctx) error {
		channels, folders := config.Tree.Snapshot()
		return c.JSON(fiber.Map{
			"channels": channels,
			"folders":  folders,
		})
	})

	// Next unread item per the configured selection policy. ?channel= scopes
	// to one channel, ?random=true picks uniformly among eligible items.
	app.Get("/news/next", func(c *fiber.Ctx) error {
		var item *models.NewsItem
		var err error
		if c.QueryBool("random") {
			item, err = config.Policy.SelectRandom(c.Query("channel"))
		} else {
			item, err = config.Policy.SelectNext(c.Query("channel"))
		}
		if err != nil {
			return err
		}
		if item == nil {
			return c.SendStatus(fiber.StatusNoContent)
		}
		return c.JSON(item)
	})

	app.Post("/news/:id/read", func(c *fiber.Ctx) error {
		id, err := strconv.ParseInt(c.Params("id"), 10, 64)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid news id")
		}

		item, err := config.Store.NewsByID(id)
		if err != nil {
			return fiber.NewError(fiber.StatusNotFound, err.Error())
		}

		if err := config.Store.MarkRead(id); err != nil {
			return err
		}
		if !item.IsRead {
			config.Tree.OnRead(item.ChannelTitle)
		}
		return c.SendStatus(fiber.StatusNoContent)
	})

	app.Post("/news/read-all", func(c *fiber.Ctx) error {
		if err := config.Store.MarkAllRead(); err != nil {
			return err
		}
		config.Tree.OnMarkAllRead()
		return c.SendStatus(fiber.StatusNoContent)
	})

	// Positive feedback: reinforce the item's words and rescore affected
	// unread items.
	app.Post("/news/:id/like", func(c *fiber.Ctx) error {
		id, err := strconv.ParseInt(c.Params("id"), 10, 64)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid news id")
		}

		item, err := config.Store.NewsByID(id)
		if err != nil {
			return fiber.NewError(fiber.StatusNotFound, err.Error())
		}

		if err := config.Engine.Like(item); err != nil {
			return err
		}

		// Return the item with its recomputed quality
		item, err = config.Store.NewsByID(id)
		if err != nil {
			return err
		}
		return c.JSON(item)
	})

	app.Get("/words", func(c *fiber.Ctx) error {
		words, err := config.Store.Words()
		if err != nil {
			return err
		}
		if words == nil {
			words = []models.WordWeight{}
		}
		return c.JSON(words)
	})

	// Toggle whether a word participates in scoring without losing its weight.
	app.Post("/words/:word/enabled", func(c *fiber.Ctx) error {
		if err := config.Store.SetWordEnabled(c.Params("word"), c.QueryBool("value", true)); err != nil {
			return fiber.NewError(fiber.StatusNotFound, err.Error())
		}
		return c.SendStatus(fiber.StatusNoContent)
	})

	// Trigger an update cycle. Progress is streamed on /update/progress.
	app.Post("/update", func(c *fiber.Ctx) error {
		if !updating.CompareAndSwap(false, true) {
			return fiber.NewError(fiber.StatusConflict, "update already running")
		}

		progress := make(chan models.ProgressEvent, 64)
		go func() {
			for event := range progress {
				broadcaster.Broadcast(event)
			}
		}()
		go func() {
			defer updating.Store(false)
			if err := config.Coordinator.Run(context.Background(), progress); err != nil {
				log.Errorf("Update cycle failed: %v", err)
			}
		}()

		return c.SendStatus(fiber.StatusAccepted)
	})

	app.Get("/update/progress", func(c *fiber.Ctx) error {
		c.Set("Content-Type", "text/event-stream")
		c.Set("Cache-Control", "no-cache")
		c.Set("Connection", "keep-alive")

		key := uuid.New().String()
		client := make(chan models.ProgressEvent, 64)
		broadcaster.AddClient(key, client)

		c.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
			defer broadcaster.RemoveClient(key)

			for event := range client {
				data, err := json.Marshal(event)
				if err != nil {
					continue
				}
				fmt.Fprintf(w, "event: progress\ndata: %s\n\n", data)
				if err := w.Flush(); err != nil {
					// Client went away
					return
				}
			}
		}))

		return nil
	})

	return app
}
