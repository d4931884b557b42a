package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/shubham852v/ai-attendance/internal/archive"
	"github.com/shubham852v/ai-attendance/internal/config"
	"github.com/shubham852v/ai-attendance/internal/media"
	"github.com/shubham852v/ai-attendance/internal/queue"
	"github.com/shubham852v/ai-attendance/internal/record"
	"github.com/shubham852v/ai-attendance/internal/store"
	"github.com/shubham852v/ai-attendance/internal/summary"
)

// Worker consumes logged-record events and runs the post-log steps:
// mirroring the still to Cloudinary and publishing a greeting to the
// kiosk display. Each step is optional by configuration, and a failed
// step never stops the loop.
func main() {
	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Println("shutdown signal received")
		cancel()
	}()

	db, err := store.Open(store.Config{
		Driver:     cfg.DatabaseDriver,
		URL:        cfg.DatabaseURL,
		SQLitePath: cfg.SQLitePath,
	})
	if err != nil {
		log.Fatalf("db connect failed: %v", err)
	}
	defer db.Close()

	var q queue.Queue
	if cfg.QueueBackend == "memory" {
		log.Println("WARNING: in-memory queue does not cross processes, expecting no messages")
		q = queue.NewInMemory(64)
	} else {
		redisClient := store.NewRedis(cfg.RedisAddr)
		defer redisClient.Close()
		q = queue.NewRedisQueue(redisClient.Client, "")
	}

	repo := record.NewRepository(db.Client)

	var mirror *archive.Client
	if cfg.CloudinaryCloudName != "" && cfg.CloudinaryAPIKey != "" && cfg.CloudinaryAPISecret != "" {
		mirror = archive.New(cfg.CloudinaryCloudName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret, cfg.CloudinaryFolder)
		log.Println("image mirroring to cloudinary:", cfg.CloudinaryCloudName)
	} else {
		log.Println("cloudinary not configured, image mirroring disabled")
	}

	var greeter *summary.Generator
	var kiosk mqtt.Client
	if cfg.GeminiAPIKey == "" {
		log.Println("GEMINI_API_KEY not set, greetings disabled")
	} else if gen, err := summary.NewGenerator(ctx, cfg.GeminiAPIKey, cfg.GeminiModel); err != nil {
		log.Printf("WARNING: greeting generator unavailable: %v", err)
	} else if client, err := media.Connect(cfg.MQTTBroker, cfg.MQTTClientID+"-worker"); err != nil {
		log.Printf("WARNING: mqtt broker unreachable, greetings disabled: %v", err)
	} else {
		greeter = gen
		kiosk = client
		defer kiosk.Disconnect(250)
	}

	messages, err := q.Consume(ctx)
	if err != nil {
		log.Fatalf("queue consume init failed: %v", err)
	}

	greetingTopic := media.GreetingTopic(cfg.KioskID)
	log.Println("worker started, waiting for logged records...")
	for msg := range messages {
		if msg.Type != queue.TypeRecordLogged {
			continue
		}

		id := string(msg.Body)
		log.Printf("processing record %s", id)

		rec, err := repo.Get(ctx, id)
		if err != nil {
			log.Printf("fetch record %s failed: %v", id, err)
			continue
		}

		if mirror != nil {
			up, err := mirror.Mirror(ctx, rec.Image)
			if err != nil {
				log.Printf("mirror image for %s failed: %v", id, err)
			} else if _, err := repo.InsertArchive(ctx, rec.ID, up.SecureURL); err != nil {
				log.Printf("save archive for %s failed: %v", id, err)
			} else {
				log.Printf("record %s image mirrored to %s", id, up.SecureURL)
			}
		}

		if greeter != nil {
			text, err := greeter.Greeting(ctx, rec.PersonName)
			if err != nil {
				log.Printf("greeting for %s failed: %v", id, err)
				continue
			}
			if token := kiosk.Publish(greetingTopic, 0, false, []byte(text)); token.Wait() && token.Error() != nil {
				log.Printf("publish greeting for %s failed: %v", id, token.Error())
			} else {
				log.Printf("greeting published for %s", rec.PersonName)
			}
		}
	}

	log.Println("worker stopped")
}
