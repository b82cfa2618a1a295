package main

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"runtime/pprof"
	"time"

	"github.com/golang/glog"
)

const profileTimeFormat = "20060102_150405"

// profiler is a cpu, heap, mutex and block profiling session toggled by SIGUSR2.
type profiler struct {
	dir     string
	closers []func()
}

func startProfiler(dir string) *profiler {
	p := &profiler{dir: dir}

	if f := p.create("cpu"); f != nil {
		if err := pprof.StartCPUProfile(f); err != nil {
			glog.Errorf("pprof: start cpu profile: %v", err)
			f.Close()
		} else {
			p.closers = append(p.closers, func() {
				pprof.StopCPUProfile()
				f.Close()
			})
		}
	}

	runtime.SetMutexProfileFraction(1)
	runtime.SetBlockProfileRate(1)
	for _, kind := range []string{"heap", "mutex", "block"} {
		kind := kind
		f := p.create(kind)
		if f == nil {
			continue
		}
		p.closers = append(p.closers, func() {
			if err := pprof.Lookup(kind).WriteTo(f, 0); err != nil {
				glog.Errorf("pprof: write %s profile: %v", kind, err)
			}
			f.Close()
		})
	}
	p.closers = append(p.closers, func() {
		runtime.SetMutexProfileFraction(0)
		runtime.SetBlockProfileRate(0)
	})

	glog.Infof("pprof: profiling started, dir: %s", dir)
	return p
}

func (p *profiler) create(kind string) *os.File {
	name := filepath.Join(p.dir, fmt.Sprintf("%s-%s.pprof", kind, time.Now().Format(profileTimeFormat)))
	f, err := os.Create(name)
	if err != nil {
		glog.Errorf("pprof: could not create %s profile %q: %v", kind, name, err)
		return nil
	}
	return f
}

func (p *profiler) stop() {
	for _, closer := range p.closers {
		closer()
	}
	p.closers = nil
	glog.Infof("pprof: profiling stopped, dir: %s", p.dir)
}

func dumpGoroutines(dir string) {
	name := filepath.Join(dir, fmt.Sprintf("goroutines-%s.dump", time.Now().Format(profileTimeFormat)))
	glog.Infof("dumping goroutines to %s", name)

	f, err := os.Create(name)
	if err != nil {
		glog.Errorf("dump goroutines error: %v", err)
		return
	}
	defer f.Close()

	if err := pprof.Lookup("goroutine").WriteTo(f, 2); err != nil {
		glog.Errorf("write goroutines to %s error: %v", name, err)
	}
}
