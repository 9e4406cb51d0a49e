package main

import (
	"context"
	"fmt"
	"os"
	"time"

	ckanadapter "github.com/ericfisherdev/threadpanel/internal/adapter/driven/ckan"
	"github.com/ericfisherdev/threadpanel/internal/config"
)

func main() {
	os.Exit(check())
}

// check exits 0 when the configured portal answers status_show.
func check() int {
	cfg, err := config.Load(os.Getenv("THREADPANEL_CONFIG"))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	client := ckanadapter.NewClient(cfg.Portal.URL, cfg.Portal.APIToken, 5*time.Second)
	version, err := client.Status(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	fmt.Printf("portal %s is up (CKAN %s)\n", cfg.Portal.URL, version)
	return 0
}
