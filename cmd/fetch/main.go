package main

import (
	"context"
	"flag"
	"log/slog"
	"os"

	"anombench/internal/fetch"
)

func main() {
	url := flag.String("url", fetch.DefaultURL, "Archive URL to download")
	out := flag.String("out", "mvtec_anomaly_detection.tar.xz", "Destination file")
	flag.Parse()

	slog.Info("Downloading dataset archive", "url", *url, "out", *out)
	if err := fetch.Archive(context.Background(), *url, *out); err != nil {
		slog.Error("Download failed", "error", err)
		os.Exit(1)
	}
	slog.Info("Download complete", "out", *out)
}
