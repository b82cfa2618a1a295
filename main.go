package main

import (
	"context"
	"flag"
	"fmt"
	"io/ioutil"
	"net"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/golang/glog"

	"github.com/mqy/minichat/api"
	"github.com/mqy/minichat/events"
	"github.com/mqy/minichat/liveness"
	"github.com/mqy/minichat/room"
	"github.com/mqy/minichat/store"
)

var (
	flagAddr     = flag.String("addr", "127.0.0.1:5000", "server address, ip:port")
	flagPidFile  = flag.String("pid-file", "minichat.pid", "pid file")
	flagStore    = flag.String("store", store.DriverBolt, "record store driver: mysql, sqlite3 or bolt")
	flagStoreDsn = flag.String("store-dsn", "minichat.db", "record store dsn, the data file path for bolt")

	flagSweepInterval = flag.Duration("sweep-interval", liveness.DefaultInterval, "interval between two liveness sweeps")
	flagStaleAfter    = flag.Duration("stale-after", liveness.DefaultStaleAfter, "participants silent for longer than this are evicted, whole seconds")

	flagKafkaBrokers = flag.String("kafka-brokers", "", "comma separated kafka brokers, empty to disable room events")
	flagKafkaTopic   = flag.String("kafka-topic", "minichat-room-events", "kafka topic of room events")

	flagCORSOrigin     = flag.String("cors-origin", "*", "allowed CORS origin, empty to disable CORS")
	flagDisableMetrics = flag.Bool("disable-metrics", false, "disable prometheus metrics")
	flagPprofDir       = flag.String("pprof-dir", "pprof", "dir to save pprof data files")
)

func main() {
	flag.Parse()

	// NOTE: os.Exit() does not call defers.
	os.Exit(run())
}

func run() int {
	defer glog.Flush()

	if err := applyEnv(flag.CommandLine); err != nil {
		return errorf("env config: %v", err)
	}
	if v := validateFlags(); v > 0 {
		return v
	}

	pid := os.Getpid()

	if err := savePid(*flagPidFile, pid); err != nil {
		return errorf("pid file: %v", err)
	}
	defer func() {
		_ = os.Remove(*flagPidFile)
	}()

	pprofDir := filepath.Join(*flagPprofDir, strconv.Itoa(pid))
	if err := os.MkdirAll(pprofDir, 0750); err != nil {
		return errorf("--pprof-dir: error create dir `%s`: %v", pprofDir, err)
	}
	defer func() {
		_ = os.RemoveAll(pprofDir)
	}()

	roomStore, err := store.Open(*flagStore, *flagStoreDsn)
	if err != nil {
		return errorf("open %s store error: %v", *flagStore, err)
	}
	defer func() {
		if err := roomStore.Close(); err != nil {
			glog.Errorf("close store error: %v", err)
		}
	}()

	var publisher events.Publisher = events.Nop{}
	if *flagKafkaBrokers != "" {
		publisher = events.NewKafkaPublisher(strings.Split(*flagKafkaBrokers, ","), *flagKafkaTopic)
		glog.Infof("room events are published to kafka topic `%s`", *flagKafkaTopic)
	}
	defer func() {
		if err := publisher.Close(); err != nil {
			glog.Errorf("close publisher error: %v", err)
		}
	}()

	svc := room.NewService(roomStore, publisher)

	server := api.NewServer(svc, nil, &api.Config{
		Addr:           *flagAddr,
		CORSOrigin:     *flagCORSOrigin,
		DisableMetrics: *flagDisableMetrics,
	})
	if err := server.Listen(); err != nil {
		return errorf("%v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sweeperStopC := make(chan struct{}, 1)
	sweeper := liveness.New(roomStore, publisher, liveness.Config{
		Interval:   *flagSweepInterval,
		StaleAfter: *flagStaleAfter,
	})
	if err := sweeper.Run(ctx, sweeperStopC); err != nil {
		return errorf("start sweeper: %v", err)
	}

	serverStopC := make(chan struct{}, 1)
	go server.Run(ctx, serverStopC)

	glog.Infof("minichat server is running, store: %s", *flagStore)
	glog.Infof("`kill -USR1 %d` to dup goroutines; `kill -USR2 %d` to start/stop profiler; `CTRL+c` or `kill %d` to graceful stop", pid, pid, pid)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGUSR1, syscall.SIGUSR2, syscall.SIGTERM, syscall.SIGINT)
	defer signal.Stop(sigCh)

	var prof *profiler
	defer func() {
		if prof != nil {
			prof.stop()
		}
	}()

	for {
		select {
		case <-serverStopC:
			// the server stops by itself only on a serve error.
			glog.Errorf("http server stopped unexpectedly")
			cancel()
			<-sweeperStopC
			return 1
		case sig := <-sigCh:
			switch sig {
			case syscall.SIGUSR1:
				dumpGoroutines(pprofDir)
			case syscall.SIGUSR2:
				if prof == nil {
					prof = startProfiler(pprofDir)
				} else {
					prof.stop()
					prof = nil
				}
			case syscall.SIGTERM, syscall.SIGINT:
				glog.Infof("received signal `%s` stopping", sig.String())
				cancel()
				waitStopped(serverStopC, sweeperStopC)
				glog.Info("minichat server exited")
				return 0
			}
		}
	}
}

func waitStopped(chans ...<-chan struct{}) {
	for _, c := range chans {
		<-c
	}
}

func validateFlags() int {
	if *flagAddr == "" {
		return errorf("--addr is required")
	}
	if err := validateAddr(*flagAddr); err != nil {
		return errorf("--addr: %v", err)
	}
	if *flagPidFile == "" {
		return errorf("--pid-file is required")
	}
	if *flagPprofDir == "" {
		return errorf("--pprof-dir is required")
	}

	switch *flagStore {
	case store.DriverMySQL, store.DriverSQLite, store.DriverBolt:
	default:
		return errorf("invalid --store `%s`, expect one of: %s, %s, %s", *flagStore, store.DriverMySQL, store.DriverSQLite, store.DriverBolt)
	}
	if *flagStoreDsn == "" {
		return errorf("--store-dsn is required")
	}

	if *flagSweepInterval <= 0 {
		return errorf("--sweep-interval MUST be positive")
	}
	if *flagStaleAfter < time.Second {
		return errorf("--stale-after MUST be at least 1s")
	}

	if *flagKafkaBrokers != "" && *flagKafkaTopic == "" {
		return errorf("--kafka-topic is required when --kafka-brokers is set")
	}
	return 0
}

func validateAddr(s string) error {
	ips, _, err := net.SplitHostPort(s)
	if err != nil {
		return fmt.Errorf("error split host port from `%s`: %v", s, err)
	}
	ip := net.ParseIP(ips)
	if ip == nil {
		return fmt.Errorf("error parse IP from host `%s`", ips)
	}
	if !ip.IsLoopback() && !ip.IsPrivate() && !ip.IsUnspecified() {
		return fmt.Errorf("`%s` is not loopback, private or unspecified address", ips)
	}
	return nil
}

func errorf(fmt string, args ...interface{}) int {
	glog.Errorf(fmt, args...)
	return 1
}

func savePid(name string, pid int) error {
	if _, err := os.Stat(name); err == nil {
		content, err := ioutil.ReadFile(name)
		if err != nil {
			return err
		}
		if len(content) > 0 {
			oldPid, err := strconv.Atoi(strings.TrimSpace(string(content)))
			if err != nil {
				return err
			}

			proc, err := os.FindProcess(oldPid)
			if err != nil {
				return err
			}
			defer proc.Release()

			if err := proc.Signal(syscall.Signal(0)); err == nil {
				return fmt.Errorf("exists with pid: %d, the process is running", oldPid)
			}
			glog.Infof("pid file exists with pid: %d, but is not running", oldPid)
		}
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("stat error: %v", err)
	}

	if err := ioutil.WriteFile(name, []byte(strconv.Itoa(pid)), 0600); err != nil {
		return fmt.Errorf("write error: %v", err)
	}
	glog.Infof("pid file: write pid done")
	return nil
}
