// Copyright 2026 Blink Labs Software
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	antelope "github.com/blinklabs-io/antelope-p2p"
	"github.com/blinklabs-io/antelope-p2p/cmd/common"
	"github.com/blinklabs-io/antelope-p2p/protocol"
)

type peerMonitorFlags struct {
	*common.GlobalFlags
	statsInterval time.Duration
	closeOnGoAway bool
}

func newPeerMonitorFlags() *peerMonitorFlags {
	f := &peerMonitorFlags{
		GlobalFlags: common.NewGlobalFlags(),
	}
	f.Flagset.DurationVar(&f.statsInterval, "stats-interval", 10*time.Second, "interval between stats reports (0 disables)")
	f.Flagset.BoolVar(&f.closeOnGoAway, "close-on-go-away", false, "disconnect when the peer sends go_away")
	return f
}

func main() {
	// Parse commandline
	f := newPeerMonitorFlags()
	f.Parse()
	logger := common.NewLogger(f.GlobalFlags)
	// Create connection
	conn := common.CreateClientConnection(f.GlobalFlags)
	sessionOpts := append(
		common.SessionOptions(f.GlobalFlags, logger),
		antelope.WithCloseOnGoAway(f.closeOnGoAway),
		antelope.WithHandshakeFunc(handshakeHandler(logger)),
		antelope.WithNoticeFunc(noticeHandler(logger)),
		antelope.WithTimeFunc(timeHandler(logger)),
		antelope.WithChainSizeFunc(
			func(_ antelope.CallbackContext, msg *protocol.MsgChainSize) error {
				logger.Info("chain_size received", "length", len(msg.Payload))
				return nil
			},
		),
		antelope.WithUnknownMessageFunc(
			func(_ antelope.CallbackContext, msg *protocol.MsgUnknown) error {
				logger.Debug(
					"unhandled message",
					"type", protocol.MessageTypeName(msg.Type()),
					"length", len(msg.Payload),
				)
				return nil
			},
		),
		antelope.WithStateChangeFunc(
			func(_ antelope.CallbackContext, oldState, newState protocol.State) {
				logger.Debug("state changed", "from", oldState.String(), "to", newState.String())
			},
		),
		antelope.WithErrorFunc(
			func(_ antelope.CallbackContext, err error) {
				logger.Warn("session error", "error", err)
			},
		),
	)
	c, err := antelope.NewConnection(
		antelope.WithConnection(conn),
		antelope.WithSessionConfig(antelope.NewSessionConfig(sessionOpts...)),
	)
	if err != nil {
		fmt.Printf("ERROR: %s\n", err)
		os.Exit(1)
	}
	if err := c.Session().SendHandshake(); err != nil {
		fmt.Printf("ERROR: %s\n", err)
		os.Exit(1)
	}

	signalChan := make(chan os.Signal, 1)
	signal.Notify(signalChan, os.Interrupt, syscall.SIGTERM)
	var tickerChan <-chan time.Time
	if f.statsInterval > 0 {
		ticker := time.NewTicker(f.statsInterval)
		defer ticker.Stop()
		tickerChan = ticker.C
	}
	for {
		select {
		case <-tickerChan:
			reportStats(logger, c.Session())
		case sig := <-signalChan:
			logger.Info("shutting down", "signal", sig.String())
			reportStats(logger, c.Session())
			_ = c.Close()
			return
		case err, ok := <-c.ErrorChan():
			if !ok {
				return
			}
			logger.Error("connection closed", "error", err)
			reportStats(logger, c.Session())
			_ = c.Close()
			os.Exit(1)
		}
	}
}

func handshakeHandler(logger *slog.Logger) antelope.HandshakeFunc {
	return func(_ antelope.CallbackContext, msg *protocol.MsgHandshake) error {
		info, err := antelope.NewPeerInfo(msg)
		if err != nil {
			return err
		}
		logger.Info(
			"peer identified",
			"network", antelope.NetworkByChainId(info.ChainId).Name,
			"protocol", info.ProtocolName,
			"agent", info.Agent,
			"p2p_address", info.P2PAddress,
			"generation", info.Generation,
		)
		return nil
	}
}

func noticeHandler(logger *slog.Logger) antelope.NoticeFunc {
	return func(ctx antelope.CallbackContext, msg *protocol.MsgNotice) error {
		logger.Info(
			"notice received",
			"known_trx_mode", msg.KnownTrx.Mode.String(),
			"known_trx", len(msg.KnownTrx.Ids),
			"known_blocks_mode", msg.KnownBlocks.Mode.String(),
			"known_blocks", len(msg.KnownBlocks.Ids),
			"head", ctx.Session.HeadBlockNum(),
			"lib", ctx.Session.LibBlockNum(),
		)
		return nil
	}
}

func timeHandler(logger *slog.Logger) antelope.TimeFunc {
	return func(_ antelope.CallbackContext, msg *protocol.MsgTime) error {
		peerTime := time.Unix(0, int64(msg.Xmt)) // #nosec G115
		logger.Debug(
			"time received",
			"peer_time", peerTime.UTC().Format(time.RFC3339Nano),
			"skew", time.Since(peerTime).Round(time.Millisecond).String(),
		)
		return nil
	}
}

func reportStats(logger *slog.Logger, session *antelope.Session) {
	stats := session.Metrics().Snapshot()
	logger.Info(
		"stats",
		"state", session.State().String(),
		"head", session.HeadBlockNum(),
		"lib", session.LibBlockNum(),
		"frames_in", stats.FramesReceived,
		"bytes_in", stats.BytesReceived,
		"frames_out", stats.FramesSent,
		"bytes_out", stats.BytesSent,
		"decode_errors", stats.DecodeErrors,
		"heartbeats", stats.HeartbeatsSent,
		"uptime", time.Since(stats.StartTime).Round(time.Second).String(),
	)
}
