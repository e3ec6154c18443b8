// watch restarts the room server whenever a bundled catalog or room layout
// file changes on disk. Catalogs are loaded once at process startup
// (internal/furniture, internal/catalog, internal/grid's go:embed), so a
// live edit needs a restart to take effect — this just automates that.
package main

import (
	"fmt"
	"log"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

var (
	serverProcess   *exec.Cmd
	restartDebounce = make(chan bool, 1)
)

// watchedDirs are every go:embed source directory for a bundled catalog or
// room layout. Editing any .json file under these triggers a restart.
var watchedDirs = []string{
	"internal/furniture/bundled",
	"internal/catalog/bundled",
	"internal/grid/bundled",
}

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: go run cmd/watch/main.go <command> [args...]")
		fmt.Println("Example: go run cmd/watch/main.go cmd/server/main.go")
		os.Exit(1)
	}

	command := os.Args[1:]

	go handleRestart(command)
	startServer(command)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		log.Fatal("failed to create watcher:", err)
	}
	defer watcher.Close()

	for _, dir := range watchedDirs {
		if err := watcher.Add(dir); err != nil {
			log.Printf("skipping %s: %v\n", dir, err)
			continue
		}
		fmt.Printf("watching %s\n", dir)
	}

	fmt.Println("catalog watcher started — edit a bundled .json file to reload it via restart")

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if !strings.HasSuffix(event.Name, ".json") {
				continue
			}
			if event.Has(fsnotify.Chmod) {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Remove) {
				fmt.Printf("catalog changed: %s — reloading\n", event.Name)
				triggerRestart()
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			log.Printf("watcher error: %v\n", err)
		}
	}
}

func triggerRestart() {
	select {
	case restartDebounce <- true:
	default:
	}
}

func handleRestart(command []string) {
	for range restartDebounce {
		time.Sleep(300 * time.Millisecond)

		for {
			select {
			case <-restartDebounce:
				continue
			default:
				goto restart
			}
		}

	restart:
		stopServer()
		startServer(command)
	}
}

func startServer(command []string) {
	fmt.Println("starting server...")

	if len(command) == 1 {
		serverProcess = exec.Command("go", "run", command[0])
	} else {
		args := append([]string{"run"}, command...)
		serverProcess = exec.Command("go", args...)
	}

	serverProcess.Stdout = os.Stdout
	serverProcess.Stderr = os.Stderr

	if err := serverProcess.Start(); err != nil {
		log.Printf("failed to start server: %v\n", err)
		return
	}
	fmt.Printf("server started (pid %d)\n", serverProcess.Process.Pid)
}

func stopServer() {
	if serverProcess == nil || serverProcess.Process == nil {
		return
	}
	fmt.Printf("stopping server (pid %d)...\n", serverProcess.Process.Pid)
	serverProcess.Process.Signal(os.Interrupt)

	done := make(chan error, 1)
	go func() { done <- serverProcess.Wait() }()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		fmt.Println("graceful shutdown timeout, force killing...")
		serverProcess.Process.Kill()
		<-done
	}
	serverProcess = nil
}
