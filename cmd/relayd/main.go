package main

import (
	"flag"
	"net/http"
	"os"

	"github.com/sirupsen/logrus"

	"parley/internal/relay"
)

func main() {
	listen := flag.String("listen", ":8080", "listen address")
	verbose := flag.Bool("verbose", false, "log every request")
	flag.Parse()

	log := logrus.New()
	log.SetOutput(os.Stderr)
	if *verbose {
		log.SetLevel(logrus.DebugLevel)
	}

	srv := relay.NewServer(log)
	log.WithField("addr", *listen).Info("relay listening")
	if err := http.ListenAndServe(*listen, srv.Handler()); err != nil {
		log.WithError(err).Fatal("relay stopped")
	}
}
