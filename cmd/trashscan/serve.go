package main

import (
	"crypto/tls"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Veraticus/trash-scanner/internal/certs"
	"github.com/Veraticus/trash-scanner/internal/config"
	"github.com/Veraticus/trash-scanner/internal/server"
)

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the JSON API for browser clients",
		Long: `Serve the assistant over HTTP. Profile, settings and feedback are shared with
the terminal app through the configured store.

Phones only let a web page use the camera over HTTPS. Pass --tls to serve with
a self-signed certificate, and --tls-host for each LAN address or hostname the
phone will use.`,
		Example: `  trashscan serve --addr :8443 --tls --tls-host 192.168.1.20`,
		RunE:    runServe,
	}

	cmd.Flags().String("addr", ":8080", "Listen address")
	cmd.Flags().Bool("tls", false, "Serve HTTPS with a self-signed certificate")
	cmd.Flags().StringSlice("tls-host", nil, "Extra hostname or IP the certificate must cover")
	_ = viper.BindPFlag("server.addr", cmd.Flags().Lookup("addr"))
	_ = viper.BindPFlag("server.tls", cmd.Flags().Lookup("tls"))
	_ = viper.BindPFlag("server.tls_hosts", cmd.Flags().Lookup("tls-host"))
	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	opts := server.Options{
		Addr:           viper.GetString("server.addr"),
		AllowedOrigins: viper.GetStringSlice("server.allowed_origins"),
		RequestTimeout: viper.GetDuration("server.request_timeout"),
		ChatTTL:        viper.GetDuration("server.chat_ttl"),
		MaxChats:       viper.GetInt("server.max_chats"),
	}
	if viper.GetBool("server.tls") {
		tlsConfig, err := serverTLS(certDir(), viper.GetStringSlice("server.tls_hosts"))
		if err != nil {
			return err
		}
		opts.TLS = tlsConfig
	}

	app, cleanup, err := loadApp(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	srv, err := server.New(ctx, app, opts, slog.Default())
	if err != nil {
		return err
	}
	return srv.ListenAndServe(ctx)
}

// serverTLS loads or creates the certificate for hosts.
func serverTLS(dir string, hosts []string) (*tls.Config, error) {
	manager := certs.NewFileManager(dir, certs.WithHosts(hosts...))
	cert, err := manager.GetOrCreateCertificate()
	if err != nil {
		return nil, fmt.Errorf("failed to prepare TLS certificate: %w", err)
	}
	slog.Info("Serving with self-signed certificate", "cert_file", manager.CertFile(), "hosts", hosts)
	return &tls.Config{
		Certificates: []tls.Certificate{cert},
		MinVersion:   tls.VersionTLS12,
	}, nil
}

func certDir() string {
	if dir := viper.GetString("server.cert_dir"); dir != "" {
		return config.ExpandPath(dir)
	}
	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		configDir = config.ExpandPath("~/.config")
	}
	return filepath.Join(configDir, "trashscan", "certs")
}
