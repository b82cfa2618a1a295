package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/golang/glog"
	kafka "github.com/segmentio/kafka-go"

	"github.com/mqy/minichat/events"
	"github.com/mqy/minichat/store"
)

// The demo drives a running minichat server with chatting bots, or tails the
// room events the server publishes to kafka.

var (
	flagMode = flag.String("mode", "bot", "demo mode: bot or tail")

	flagServer       = flag.String("server", "http://127.0.0.1:5000", "bot: minichat server url")
	flagBots         = flag.Int("bots", 2, "bot: number of bots")
	flagTickDuration = flag.Duration("tick-duration", 5*time.Second, "bot: duration between two posts of a bot")
	flagHeartbeat    = flag.Duration("heartbeat", 5*time.Second, "bot: heartbeat interval, keep below the server --stale-after")
	flagPollLimit    = flag.Int("poll-limit", 10, "bot: limit of each messages poll")

	flagKafkaBrokers = flag.String("kafka-brokers", "127.0.0.1:9092", "tail: comma separated kafka brokers")
	flagKafkaTopic   = flag.String("kafka-topic", "minichat-room-events", "tail: kafka topic")
)

func main() {
	flag.Parse()
	defer glog.Flush()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var err error
	switch *flagMode {
	case "bot":
		err = runBots(ctx)
	case "tail":
		err = tail(ctx)
	default:
		err = fmt.Errorf("unknown --mode `%s`", *flagMode)
	}
	if err != nil && ctx.Err() == nil {
		glog.Errorf("demo: %v", err)
		glog.Flush()
		os.Exit(1)
	}
}

type bot struct {
	name   string
	server string
	client *http.Client
}

func (b *bot) do(ctx context.Context, method, path string, body interface{}, out interface{}) (int, error) {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return 0, err
		}
	}
	req, err := http.NewRequestWithContext(ctx, method, b.server+path, &buf)
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("user", b.name)

	resp, err := b.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if out != nil && resp.StatusCode == http.StatusOK {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return resp.StatusCode, err
		}
	}
	return resp.StatusCode, nil
}

func (b *bot) run(ctx context.Context) {
	code, err := b.do(ctx, http.MethodPost, "/participants", map[string]string{"name": b.name}, nil)
	if err != nil || code != http.StatusCreated {
		glog.Errorf("bot `%s`: register: %d %v", b.name, code, err)
		return
	}
	glog.Infof("bot `%s` joined", b.name)

	heartbeat := time.NewTicker(*flagHeartbeat)
	post := time.NewTicker(*flagTickDuration)
	defer func() {
		heartbeat.Stop()
		post.Stop()
	}()

	var n int
	for {
		select {
		case <-ctx.Done():
			return
		case <-heartbeat.C:
			if code, err := b.do(ctx, http.MethodPost, "/status", nil, nil); err != nil || code != http.StatusOK {
				glog.Errorf("bot `%s`: heartbeat: %d %v", b.name, code, err)
			}
		case <-post.C:
			n++
			msg := map[string]string{
				"to":   store.RoomBroadcast,
				"text": fmt.Sprintf("hello #%d from %s", n, b.name),
				"type": string(store.KindMessage),
			}
			if code, err := b.do(ctx, http.MethodPost, "/messages", msg, nil); err != nil || code != http.StatusCreated {
				glog.Errorf("bot `%s`: send: %d %v", b.name, code, err)
				continue
			}

			var msgs []store.Message
			if _, err := b.do(ctx, http.MethodGet, fmt.Sprintf("/messages?limit=%d", *flagPollLimit), nil, &msgs); err != nil {
				glog.Errorf("bot `%s`: poll: %v", b.name, err)
				continue
			}
			glog.Infof("bot `%s` sees %d messages", b.name, len(msgs))
			for _, m := range msgs {
				glog.V(1).Infof("  (%s) %s -> %s: %s", m.Time, m.From, m.To, m.Text)
			}
		}
	}
}

func runBots(ctx context.Context) error {
	if *flagBots <= 0 {
		return fmt.Errorf("--bots MUST be positive")
	}

	client := &http.Client{Timeout: 5 * time.Second}
	var wg sync.WaitGroup
	for i := 0; i < *flagBots; i++ {
		b := &bot{name: fmt.Sprintf("bot-%d", i+1), server: strings.TrimRight(*flagServer, "/"), client: client}
		wg.Add(1)
		go func() {
			defer wg.Done()
			b.run(ctx)
		}()
	}
	wg.Wait()
	return nil
}

// kafka-topics.sh --bootstrap-server localhost:9092 --topic minichat-room-events --create
func tail(ctx context.Context) error {
	if *flagKafkaBrokers == "" {
		return fmt.Errorf("--kafka-brokers is required")
	}

	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  strings.Split(*flagKafkaBrokers, ","),
		Topic:    *flagKafkaTopic,
		MinBytes: 1,
		MaxBytes: 10e6,
	})
	defer r.Close()

	for {
		msg, err := r.ReadMessage(ctx)
		if err != nil {
			return err
		}

		var evt events.RoomEvent
		if err := json.Unmarshal(msg.Value, &evt); err != nil || evt.Message == nil {
			glog.Errorf("tail: bad event at offset %d: %v", msg.Offset, err)
			continue
		}
		fmt.Printf("%s [%s] %s -> %s: %s\n",
			time.UnixMilli(evt.At).Format(time.RFC3339), evt.Kind, evt.From, evt.To, evt.Text)
	}
}
