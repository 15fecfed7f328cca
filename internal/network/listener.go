/*
SPDX-FileCopyrightText: Red Hat

SPDX-License-Identifier: Apache-2.0
*/

package network

import (
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"net"

	"github.com/spf13/pflag"
)

// ListenerBuilder contains the data and logic needed to create a network listener. Don't create
// instances of this object directly, use the NewListener function instead.
type ListenerBuilder struct {
	logger  *slog.Logger
	network string
	address string
	tlsCrt  string
	tlsKey  string
}

// NewListener creates a builder that can then used to configure and create a network listener.
func NewListener() *ListenerBuilder {
	return &ListenerBuilder{
		network: "tcp",
	}
}

// SetLogger sets the logger that the listener will use to send messages to the log. This is
// mandatory.
func (b *ListenerBuilder) SetLogger(value *slog.Logger) *ListenerBuilder {
	b.logger = value
	return b
}

// SetFlags sets the command line flags that should be used to configure the listener.
//
// The name is used to select the options when there are multiple listeners. For example, if it
// is 'API' then it will only take into accounts the flags starting with '--api'.
//
// This is optional.
func (b *ListenerBuilder) SetFlags(flags *pflag.FlagSet, name string) *ListenerBuilder {
	if flags == nil {
		return b
	}

	get := func(suffix string, set func(string) *ListenerBuilder) {
		flag := listenerFlagName(name, suffix)
		if flags.Lookup(flag) == nil {
			return
		}
		value, err := flags.GetString(flag)
		if err != nil {
			if b.logger != nil {
				b.logger.Error(
					"Failed to get flag value",
					slog.String("flag", flag),
					slog.String("error", err.Error()),
				)
			}
			return
		}
		set(value)
	}
	get(listenerAddrFlagSuffix, b.SetAddress)
	get(listenerTLSCrtFlagSuffix, b.SetTLSCrt)
	get(listenerTLSKeyFlagSuffix, b.SetTLSKey)

	return b
}

// SetNetwork sets the network. This is optional and the default is TCP.
func (b *ListenerBuilder) SetNetwork(value string) *ListenerBuilder {
	b.network = value
	return b
}

// SetAddress sets the listen address. This is mandatory.
func (b *ListenerBuilder) SetAddress(value string) *ListenerBuilder {
	b.address = value
	return b
}

// SetTLSCrt sets the file that contains the certificate file, in PEM format.
func (b *ListenerBuilder) SetTLSCrt(value string) *ListenerBuilder {
	b.tlsCrt = value
	return b
}

// SetTLSKey sets the file that contains the key file, in PEM format.
func (b *ListenerBuilder) SetTLSKey(value string) *ListenerBuilder {
	b.tlsKey = value
	return b
}

// Build uses the data stored in the builder to create a new network listener. When a certificate
// and key are configured the listener terminates TLS, otherwise it accepts plain connections and
// expects TLS to be terminated by the ingress proxy.
func (b *ListenerBuilder) Build() (result net.Listener, err error) {
	// Check parameters:
	if b.logger == nil {
		err = errors.New("logger is mandatory")
		return
	}
	if b.network == "" {
		err = errors.New("network is mandatory")
		return
	}
	if b.address == "" {
		err = errors.New("address is mandatory")
		return
	}
	if (b.tlsCrt == "") != (b.tlsKey == "") {
		err = errors.New("TLS certificate and key must be specified together")
		return
	}

	var tlsConfig *tls.Config
	if b.tlsCrt != "" {
		var crt tls.Certificate
		crt, err = tls.LoadX509KeyPair(b.tlsCrt, b.tlsKey)
		if err != nil {
			err = fmt.Errorf("failed to load TLS key pair: %w", err)
			return
		}
		tlsConfig = &tls.Config{
			Certificates: []tls.Certificate{crt},
			MinVersion:   tls.VersionTLS12,
		}
		b.logger.Info(
			"Loaded TLS key and certificate",
			"key", b.tlsKey,
			"crt", b.tlsCrt,
		)
	}

	listener, err := net.Listen(b.network, b.address)
	if err != nil {
		return
	}
	if tlsConfig != nil {
		listener = tls.NewListener(listener, tlsConfig)
	}

	result = listener
	return
}

// Common listener names:
const (
	APIListener     = "API"
	MetricsListener = "Metrics"
)

// Common listener addresses:
const (
	APIAddress     = "localhost:3000"
	MetricsAddress = "localhost:8008"
)
