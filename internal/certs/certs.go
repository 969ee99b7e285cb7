// Package certs provides self-signed TLS certificates for serving the API to
// browsers on the local network, which only expose the camera to secure
// origins.
package certs

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"errors"
	"fmt"
	"math/big"
	"net"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/jonboulle/clockwork"
)

const (
	validFor = 365 * 24 * time.Hour
	// renewBefore regenerates certificates that would expire soon.
	renewBefore = 30 * 24 * time.Hour
)

// Manager hands out the serving certificate.
type Manager interface {
	GetOrCreateCertificate() (tls.Certificate, error)
}

// FileManager keeps one certificate and key pair in a directory and
// regenerates it when it is unreadable, expiring or missing a host.
type FileManager struct {
	clock    clockwork.Clock
	certDir  string
	certFile string
	keyFile  string
	hosts    []string
}

// Option configures a FileManager.
type Option func(*FileManager)

// WithClock sets the clock used for validity windows.
func WithClock(c clockwork.Clock) Option {
	return func(m *FileManager) { m.clock = c }
}

// WithHosts adds DNS names or IP addresses the certificate must cover, on
// top of localhost and the loopback addresses.
func WithHosts(hosts ...string) Option {
	return func(m *FileManager) {
		for _, h := range hosts {
			if h != "" && !slices.Contains(m.hosts, h) {
				m.hosts = append(m.hosts, h)
			}
		}
	}
}

// NewFileManager creates a manager storing files in certDir.
func NewFileManager(certDir string, opts ...Option) *FileManager {
	m := &FileManager{
		clock:    clockwork.NewRealClock(),
		certDir:  certDir,
		certFile: filepath.Join(certDir, "trashscan.crt"),
		keyFile:  filepath.Join(certDir, "trashscan.key"),
		hosts:    []string{"localhost", "127.0.0.1", "::1"},
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// CertFile is the PEM certificate path, for installing as trusted on a phone.
func (m *FileManager) CertFile() string { return m.certFile }

// GetOrCreateCertificate returns the stored certificate, generating a new one
// when needed.
func (m *FileManager) GetOrCreateCertificate() (tls.Certificate, error) {
	exists, err := m.CertificateExists()
	if err != nil {
		return tls.Certificate{}, fmt.Errorf("failed to check certificate existence: %w", err)
	}
	if exists {
		cert, loadErr := tls.LoadX509KeyPair(m.certFile, m.keyFile)
		if loadErr == nil && m.verifyCertificate(cert) == nil {
			return cert, nil
		}
		if err := m.removeCertificates(); err != nil {
			return tls.Certificate{}, fmt.Errorf("failed to remove stale certificate: %w", err)
		}
	}
	return m.generateCertificate()
}

// CertificateExists checks if both certificate and key files exist.
func (m *FileManager) CertificateExists() (bool, error) {
	for _, path := range []string{m.certFile, m.keyFile} {
		if _, err := os.Stat(path); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return false, nil
			}
			return false, fmt.Errorf("failed to stat %s: %w", path, err)
		}
	}
	return true, nil
}

func (m *FileManager) generateCertificate() (tls.Certificate, error) {
	if err := os.MkdirAll(m.certDir, 0700); err != nil {
		return tls.Certificate{}, fmt.Errorf("failed to create certificate directory: %w", err)
	}

	priv, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return tls.Certificate{}, fmt.Errorf("failed to generate private key: %w", err)
	}
	serial, err := rand.Int(rand.Reader, new(big.Int).Lsh(big.NewInt(1), 128))
	if err != nil {
		return tls.Certificate{}, fmt.Errorf("failed to generate serial number: %w", err)
	}

	now := m.clock.Now()
	template := x509.Certificate{
		SerialNumber:          serial,
		Subject:               pkix.Name{Organization: []string{"Trash Scanner"}, CommonName: "trashscan local API"},
		NotBefore:             now.Add(-time.Hour),
		NotAfter:              now.Add(validFor),
		KeyUsage:              x509.KeyUsageDigitalSignature,
		ExtKeyUsage:           []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
		BasicConstraintsValid: true,
	}
	for _, h := range m.hosts {
		if ip := net.ParseIP(h); ip != nil {
			template.IPAddresses = append(template.IPAddresses, ip)
		} else {
			template.DNSNames = append(template.DNSNames, h)
		}
	}

	certDER, err := x509.CreateCertificate(rand.Reader, &template, &template, &priv.PublicKey, priv)
	if err != nil {
		return tls.Certificate{}, fmt.Errorf("failed to create certificate: %w", err)
	}
	keyDER, err := x509.MarshalECPrivateKey(priv)
	if err != nil {
		return tls.Certificate{}, fmt.Errorf("failed to encode private key: %w", err)
	}

	if err := writePEM(m.certFile, "CERTIFICATE", certDER); err != nil {
		return tls.Certificate{}, err
	}
	if err := writePEM(m.keyFile, "EC PRIVATE KEY", keyDER); err != nil {
		return tls.Certificate{}, err
	}
	return tls.LoadX509KeyPair(m.certFile, m.keyFile)
}

func writePEM(path, blockType string, der []byte) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to open %s for writing: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	if err := pem.Encode(f, &pem.Block{Type: blockType, Bytes: der}); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// verifyCertificate rejects certificates that are not yet valid, expire
// within renewBefore or do not cover every configured host.
func (m *FileManager) verifyCertificate(cert tls.Certificate) error {
	if len(cert.Certificate) == 0 {
		return errors.New("no certificates found")
	}
	x509Cert, err := x509.ParseCertificate(cert.Certificate[0])
	if err != nil {
		return fmt.Errorf("failed to parse certificate: %w", err)
	}

	now := m.clock.Now()
	if now.Before(x509Cert.NotBefore) {
		return errors.New("certificate not yet valid")
	}
	if now.Add(renewBefore).After(x509Cert.NotAfter) {
		return errors.New("certificate expires soon")
	}
	for _, h := range m.hosts {
		if err := x509Cert.VerifyHostname(h); err != nil {
			return fmt.Errorf("certificate not valid for %s: %w", h, err)
		}
	}
	return nil
}

func (m *FileManager) removeCertificates() error {
	for _, path := range []string{m.certFile, m.keyFile} {
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("failed to remove %s: %w", path, err)
		}
	}
	return nil
}
