package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"net"
	"strconv"
	"strings"
	"time"
)

// NetAddress holds structured network address data for host and port.
// It implements the flag.Value interface.
type NetAddress struct {
	Host string
	Port int
}

// parseFlags parses command-line configuration flags from args using a
// dedicated flag set named name.
//
// Flags:
//
//	-a server address in format [host]:[port]
//	-grpc-address grpc server address in format [host]:[port]
//	-d database DSN
//	-c/-config json file path with configs
//	-r remote API address used by the client
//	-remote-grpc remote gRPC health address used by the client
//	-token bearer token presented by the client
//	-l local API address in format [host]:[port]
//	-collections comma separated list of collections
//	-conflict-policy remote-wins | local-wins | newest-wins
//	-sync-interval periodic sync interval (e.g., "60s")
//	-startup-delay delay of the initial sync (e.g., "5s")
//	-probe-interval connectivity probe interval (e.g., "10s")
//	-request-timeout request timeout (e.g., "30s", "1m")
//	-hash-key security hash key
//	-token-sign-key token signing key
//	-log-file client log file path
func parseFlags(name string, args []string) (*StructuredConfig, error) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	var serverAddress, grpcServerAddress, localAPIAddress NetAddress
	var databaseDSN, jsonConfigPath string
	var remoteAddress, remoteGRPC, token string
	var collections, conflictPolicy string
	var syncInterval, startupDelay, probeInterval, requestTimeout time.Duration
	var hashKey, tokenSignKey, logFile string

	fs.Var(&serverAddress, "a", "Net address host:port")
	fs.Var(&grpcServerAddress, "grpc-address", "Net grpc server address host:port")
	fs.Var(&localAPIAddress, "l", "Local API address host:port")
	fs.StringVar(&databaseDSN, "d", "", "Database DSN")
	fs.StringVar(&jsonConfigPath, "c", "", "JSON config file path")
	fs.StringVar(&jsonConfigPath, "config", "", "JSON config file path (alias)")
	fs.StringVar(&remoteAddress, "r", "", "Remote API address")
	fs.StringVar(&remoteGRPC, "remote-grpc", "", "Remote gRPC health address")
	fs.StringVar(&token, "token", "", "Bearer token for the remote API")
	fs.StringVar(&collections, "collections", "", "Comma separated collections")
	fs.StringVar(&conflictPolicy, "conflict-policy", "", "remote-wins | local-wins | newest-wins")
	fs.DurationVar(&syncInterval, "sync-interval", 0, "Periodic sync interval")
	fs.DurationVar(&startupDelay, "startup-delay", 0, "Initial sync delay")
	fs.DurationVar(&probeInterval, "probe-interval", 0, "Connectivity probe interval")
	fs.DurationVar(&requestTimeout, "request-timeout", 0, "Request timeout (e.g., 30s, 1m)")
	fs.StringVar(&hashKey, "hash-key", "", "Security hash key")
	fs.StringVar(&tokenSignKey, "token-sign-key", "", "Token signing key")
	fs.StringVar(&logFile, "log-file", "", "Client log file")

	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("error parsing flags: %w", err)
	}

	return &StructuredConfig{
		App: App{
			HashKey:      hashKey,
			TokenSignKey: tokenSignKey,
		},
		Storage: Storage{
			DB: DB{DSN: databaseDSN},
		},
		Server: Server{
			HTTPAddress:    serverAddress.String(),
			GRPCAddress:    grpcServerAddress.String(),
			RequestTimeout: requestTimeout,
		},
		Adapter: Adapter{
			HTTPAddress:    remoteAddress,
			GRPCAddress:    remoteGRPC,
			RequestTimeout: requestTimeout,
			Token:          token,
		},
		Workers: Workers{
			SyncInterval:  syncInterval,
			StartupDelay:  startupDelay,
			ProbeInterval: probeInterval,
		},
		Sync: Sync{
			Collections:    splitList(collections),
			ConflictPolicy: conflictPolicy,
		},
		LocalAPI:     LocalAPI{Address: localAPIAddress.String()},
		Log:          Log{File: logFile},
		JSONFilePath: jsonConfigPath,
	}, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// String returns a canonical host:port string for a NetAddress.
// If neither Host nor Port are set, it returns an empty string.
func (a *NetAddress) String() string {
	if a.Host == "" && a.Port == 0 {
		return ""
	}

	return a.Host + ":" + strconv.Itoa(a.Port)
}

// Set parses the input string of form host:port and populates the NetAddress.
// It validates the port range, checks IP correctness unless host is "localhost"
// or empty, and returns an error if the format or values are invalid.
func (a *NetAddress) Set(s string) error {
	hostAndPort := strings.Split(s, ":")
	if len(hostAndPort) != 2 {
		return errors.New("need address in a form `host:port`")
	}

	host := hostAndPort[0]
	port, err := strconv.Atoi(hostAndPort[1])
	if err != nil {
		return err
	}

	if port < 1 || port > 65535 {
		return errors.New("port number must be in range 1..65535")
	}

	if host != "localhost" && host != "" {
		if ip := net.ParseIP(host); ip == nil {
			return errors.New("incorrect IP-address provided")
		}
	}

	a.Host = host
	a.Port = port
	return nil
}
