package main

import (
	"context"
	"fmt"
	"log"
	"net"
	"os"
	"os/signal"
	"syscall"

	"homepanel/auth"
	"homepanel/internal/config"
	"homepanel/internal/db"
	"homepanel/internal/engine"
	"homepanel/internal/internet_bridge"
	"homepanel/internal/mqtt"
	"homepanel/internal/redis"
	"homepanel/internal/scheduler"
	"homepanel/internal/taskqueue"
	"homepanel/internal/web"
	"homepanel/internal/web/events"

	"github.com/pion/mdns/v2"
	"golang.org/x/net/ipv4"
	"golang.org/x/net/ipv6"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	dbConn, err := db.NewDB(ctx, cfg.DBURL)
	if err != nil {
		log.Fatalf("Failed to connect to DB: %v", err)
	}
	defer dbConn.Close()

	redisClient := redis.NewRedisClient(cfg.RedisAddr)
	stateStore := redis.NewStateStore(redisClient)

	mqttClient, err := mqtt.NewMQTTClient(cfg.MQTTBroker, cfg.MQTTClientID)
	if err != nil {
		log.Fatalf("Failed to connect to MQTT: %v", err)
	}

	publisher := mqtt.NewCommandPublisher(mqttClient)
	executor := engine.NewExecutor(dbConn, publisher)
	runner := engine.NewRunner(dbConn, executor, nil)
	cooldown := engine.NewCooldownTracker(cfg.CooldownWindow, nil)
	periodic := engine.NewPeriodicEvaluator(dbConn, stateStore, runner, cooldown, cfg.TickInterval)
	go periodic.Run(ctx)

	queue := taskqueue.NewQueue(cfg.RedisAddr)
	worker := taskqueue.NewWorker(cfg.RedisAddr, dbConn, executor, periodic)
	go func() {
		if err := worker.Run(); err != nil {
			log.Fatalf("Failed to run task workers: %v", err)
		}
	}()

	sched := scheduler.NewScheduler(dbConn, queue)
	sched.Start()
	if err := sched.LoadSchedules(ctx); err != nil {
		log.Printf("SCHEDULER: Failed to load schedules: %v", err)
	}

	hub := events.NewHub()

	ingestor := mqtt.NewIngestor(mqttClient, stateStore, dbConn, runner, hub)
	if err := ingestor.Start(ctx); err != nil {
		log.Fatalf("Failed to start state ingestion: %v", err)
	}

	authModule := auth.NewAuthModule(dbConn.Pool(), redisClient, cfg.JWTSecret)

	webServer := web.NewWebServer(web.Deps{
		DB:        dbConn,
		Auth:      authModule,
		Publisher: publisher,
		Queue:     queue,
		Scheduler: sched,
		Engine:    &engineNotifier{queue: queue, cooldown: cooldown},
		Hub:       hub,
	})
	go func() {
		if err := webServer.Start(cfg.HTTPPort); err != nil {
			log.Fatalf("Failed to run web server: %v", err)
		}
	}()

	go startMDNSServer(cfg.MDNSLocalName)

	if cfg.RemoteAccessEnabled {
		go internet_bridge.Run(ctx, internet_bridge.Config{
			PublicWS:   cfg.RemoteAccessWS,
			LocalURL:   fmt.Sprintf("127.0.0.1:%d", cfg.HTTPPort),
			AgentID:    cfg.AgentID,
			RetryDelay: cfg.RemoteAccessRetry,
		})
	} else {
		log.Println("Remote access bridge is disabled")
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	cancel()
	ingestor.Stop()
	sched.Stop()
	worker.Stop()
	if err := queue.Close(); err != nil {
		log.Printf("TASKQUEUE: Failed to close queue client: %v", err)
	}
	hub.Close()
	mqttClient.Disconnect(250)
	log.Println("Shutdown complete")
}

// engineNotifier lets the HTTP layer poke the automation engine after
// rule mutations without importing it directly.
type engineNotifier struct {
	queue    *taskqueue.Queue
	cooldown *engine.CooldownTracker
}

func (n *engineNotifier) RuleChanged(ruleID string) {
	if err := n.queue.EnqueueRuleEvaluation(ruleID); err != nil {
		log.Printf("ENGINE: Failed to enqueue evaluation for rule %s: %v", ruleID, err)
	}
}

func (n *engineNotifier) RuleDeleted(ruleID string) {
	n.cooldown.Forget(ruleID)
}

func startMDNSServer(localName string) {
	addr4, err := net.ResolveUDPAddr("udp4", mdns.DefaultAddressIPv4)
	if err != nil {
		log.Println("Failed to resolve UDP4 address for mDNS:", err)
		return
	}

	addr6, err := net.ResolveUDPAddr("udp6", mdns.DefaultAddressIPv6)
	if err != nil {
		log.Println("Failed to resolve UDP6 address for mDNS:", err)
		return
	}

	l4, err := net.ListenUDP("udp4", addr4)
	if err != nil {
		log.Println("Failed to listen on UDP4 for mDNS:", err)
		return
	}

	l6, err := net.ListenUDP("udp6", addr6)
	if err != nil {
		log.Println("Failed to listen on UDP6 for mDNS:", err)
		return
	}

	_, err = mdns.Server(ipv4.NewPacketConn(l4), ipv6.NewPacketConn(l6), &mdns.Config{
		LocalNames: []string{localName},
	})
	if err != nil {
		log.Println("Failed to start mDNS server:", err)
	}
}
