package certs

import (
	"crypto/tls"
	"crypto/x509"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func leaf(t *testing.T, cert tls.Certificate) *x509.Certificate {
	t.Helper()
	require.Len(t, cert.Certificate, 1)
	x509Cert, err := x509.ParseCertificate(cert.Certificate[0])
	require.NoError(t, err)
	return x509Cert
}

func TestFileManager_GetOrCreateCertificate(t *testing.T) {
	start := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		setup    func(t *testing.T, certDir string, clock *clockwork.FakeClock)
		validate func(t *testing.T, first, second *x509.Certificate)
		name     string
		hosts    []string
	}{
		{
			name: "creates certificate for localhost",
			validate: func(t *testing.T, _, cert *x509.Certificate) {
				assert.Equal(t, "Trash Scanner", cert.Subject.Organization[0])
				assert.Contains(t, cert.DNSNames, "localhost")
				assert.NoError(t, cert.VerifyHostname("127.0.0.1"))
				assert.Equal(t, start.Add(validFor), cert.NotAfter.UTC())
			},
		},
		{
			name:  "covers extra hosts",
			hosts: []string{"192.168.1.20", "scanner.lan"},
			validate: func(t *testing.T, _, cert *x509.Certificate) {
				assert.Contains(t, cert.DNSNames, "scanner.lan")
				assert.True(t, slicesContainsIP(cert.IPAddresses, net.ParseIP("192.168.1.20")))
			},
		},
		{
			name: "reuses a valid certificate",
			setup: func(t *testing.T, certDir string, clock *clockwork.FakeClock) {
				clock.Advance(24 * time.Hour)
			},
			validate: func(t *testing.T, first, second *x509.Certificate) {
				assert.Equal(t, first.SerialNumber, second.SerialNumber)
			},
		},
		{
			name: "renews a certificate close to expiry",
			setup: func(t *testing.T, certDir string, clock *clockwork.FakeClock) {
				clock.Advance(validFor - renewBefore + time.Hour)
			},
			validate: func(t *testing.T, first, second *x509.Certificate) {
				assert.NotEqual(t, first.SerialNumber, second.SerialNumber)
				assert.True(t, second.NotAfter.After(first.NotAfter))
			},
		},
		{
			name: "replaces unreadable files",
			setup: func(t *testing.T, certDir string, _ *clockwork.FakeClock) {
				require.NoError(t, os.WriteFile(filepath.Join(certDir, "trashscan.crt"), []byte("garbage"), 0600))
			},
			validate: func(t *testing.T, first, second *x509.Certificate) {
				assert.NotEqual(t, first.SerialNumber, second.SerialNumber)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			certDir := filepath.Join(t.TempDir(), "certs")
			clock := clockwork.NewFakeClockAt(start)

			m := NewFileManager(certDir, WithClock(clock), WithHosts(tt.hosts...))
			cert, err := m.GetOrCreateCertificate()
			require.NoError(t, err)
			first := leaf(t, cert)

			if tt.setup != nil {
				tt.setup(t, certDir, clock)
			}

			cert, err = NewFileManager(certDir, WithClock(clock), WithHosts(tt.hosts...)).GetOrCreateCertificate()
			require.NoError(t, err)
			tt.validate(t, first, leaf(t, cert))
		})
	}
}

func TestFileManager_NewHostForcesRegeneration(t *testing.T) {
	certDir := t.TempDir()

	cert, err := NewFileManager(certDir).GetOrCreateCertificate()
	require.NoError(t, err)
	first := leaf(t, cert)

	cert, err = NewFileManager(certDir, WithHosts("10.0.0.5")).GetOrCreateCertificate()
	require.NoError(t, err)
	second := leaf(t, cert)

	assert.NotEqual(t, first.SerialNumber, second.SerialNumber)
	assert.NoError(t, second.VerifyHostname("10.0.0.5"))
}

func TestFileManager_CertificateExists(t *testing.T) {
	certDir := t.TempDir()
	m := NewFileManager(certDir)

	exists, err := m.CertificateExists()
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, os.WriteFile(m.CertFile(), []byte("x"), 0600))
	exists, err = m.CertificateExists()
	require.NoError(t, err)
	assert.False(t, exists, "key file still missing")

	_, err = m.GetOrCreateCertificate()
	require.NoError(t, err)
	exists, err = m.CertificateExists()
	require.NoError(t, err)
	assert.True(t, exists)

	info, err := os.Stat(filepath.Join(certDir, "trashscan.key"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestWithHosts_SkipsDuplicates(t *testing.T) {
	m := NewFileManager(t.TempDir(), WithHosts("localhost", "", "scanner.lan", "scanner.lan"))
	assert.Equal(t, []string{"localhost", "127.0.0.1", "::1", "scanner.lan"}, m.hosts)
}

func slicesContainsIP(ips []net.IP, want net.IP) bool {
	for _, ip := range ips {
		if ip.Equal(want) {
			return true
		}
	}
	return false
}
