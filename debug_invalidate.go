package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/nats-io/nats.go"
)

// Manual sender for cache invalidation events. Run it against a local bus
// to exercise a daemon's events subscriber:
//
//	go run debug_invalidate.go [version [path]]
//
// No arguments publishes a full-purge event.
func main() {
	url := nats.DefaultURL
	if v := os.Getenv("DOCSERVE_NATS_URL"); v != "" {
		url = v
	}
	subject := "docserve.content.updated"
	if v := os.Getenv("DOCSERVE_NATS_SUBJECT"); v != "" {
		subject = v
	}

	event := struct {
		Version string `json:"version,omitempty"`
		Path    string `json:"path,omitempty"`
	}{}
	if len(os.Args) > 1 {
		event.Version = os.Args[1]
	}
	if len(os.Args) > 2 {
		event.Path = os.Args[2]
	}

	payload, err := json.Marshal(event)
	if err != nil {
		log.Fatalf("marshal event: %v", err)
	}

	nc, err := nats.Connect(url, nats.Timeout(5*time.Second))
	if err != nil {
		log.Fatalf("connect to %s: %v", url, err)
	}
	defer nc.Close()

	if err := nc.Publish(subject, payload); err != nil {
		log.Fatalf("publish: %v", err)
	}
	if err := nc.Flush(); err != nil {
		log.Fatalf("flush: %v", err)
	}

	fmt.Printf("Published %s to %s\n", payload, subject)
	switch {
	case event.Version == "":
		fmt.Println("Scope: full cache purge")
	case event.Path == "":
		fmt.Printf("Scope: all entries for version %s\n", event.Version)
	default:
		fmt.Printf("Scope: %s/%s\n", event.Version, event.Path)
	}
}
