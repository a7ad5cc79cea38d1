package server

import (
	"context"
	"time"

	"github.com/pkg/errors"
)

var ErrCannotGetConnectedChain = errors.New("Cannot detect chain the NEAR node is connected to")
var ErrNodeSyncing = errors.New("NEAR node is still syncing")
var ErrBlockSyncingSeemsStalled = errors.New("Block syncing seems stalled")
var ErrLostLotsOfBlocks = errors.New("Lost a lot of blocks, expected block height to be higher")
var ErrLostFewBlocks = errors.New("Lost a few blocks, expected block height to be higher")

const nodeStatusTimeout = 10 * time.Second

// testConnectionToNode checks the node of the default network answers status.
func (s *Server) testConnectionToNode() error {
	n := s.pool.Fallback()

	ctx, cancel := context.WithTimeout(n.GetContext(), nodeStatusTimeout)
	defer cancel()
	status, err := n.NodeStatus(ctx)
	if err != nil {
		s.logger.Log("readiness", "NEAR status request failed", "network", n.Network(), "err", err)
		return errors.Wrapf(err, "%s node unreachable", n.Network())
	}
	if status.ChainID == "" {
		s.logger.Log("readiness", "NEAR status has no chain id", "network", n.Network())
		return ErrCannotGetConnectedChain
	}
	return nil
}

func (s *Server) testBlocksSyncing() error {
	s.blocksMutex.RLock()
	nextBlockCheck := s.nextBlockCheck
	lastBlockStatus := s.lastBlockStatus
	s.blocksMutex.RUnlock()
	now := time.Now()
	if nextBlockCheck == nil {
		nextBlockCheckTime := time.Now().Add(-30 * time.Minute)
		nextBlockCheck = &nextBlockCheckTime
	}
	if nextBlockCheck.After(now) {
		if lastBlockStatus != nil {
			s.logger.Log("liveness", "blocks syncing", "err", lastBlockStatus)
		}
		return lastBlockStatus
	}
	s.blocksMutex.Lock()
	if s.nextBlockCheck != nil && nextBlockCheck != s.nextBlockCheck {
		// multiple requests were waiting on the write lock
		s.blocksMutex.Unlock()
		return s.testBlocksSyncing()
	}
	defer s.blocksMutex.Unlock()

	n := s.pool.Fallback()
	ctx, cancel := context.WithTimeout(n.GetContext(), nodeStatusTimeout)
	defer cancel()
	status, err := n.NodeStatus(ctx)
	if err != nil {
		s.logger.Log("liveness", "status request failed", "err", err)
		return err
	}

	latest := status.SyncInfo.LatestBlockHeight
	nextBlockCheckTime := time.Now().Add(5 * time.Minute)
	s.nextBlockCheck = &nextBlockCheckTime

	switch {
	case status.SyncInfo.Syncing:
		nextBlockCheckTime = time.Now().Add(30 * time.Second)
		s.nextBlockCheck = &nextBlockCheckTime
		s.lastBlockStatus = ErrNodeSyncing
	case latest == s.lastBlock:
		// stalled
		nextBlockCheckTime = time.Now().Add(15 * time.Second)
		s.nextBlockCheck = &nextBlockCheckTime
		s.lastBlockStatus = ErrBlockSyncingSeemsStalled
	case latest < s.lastBlock:
		if s.lastBlock-latest > 10 {
			// probably a real problem
			s.lastBlock = 0
			nextBlockCheckTime = time.Now().Add(60 * time.Second)
			s.nextBlockCheck = &nextBlockCheckTime
			s.logger.Log("liveness", "Lost lots of blocks")
			s.lastBlockStatus = ErrLostLotsOfBlocks
		} else {
			// could be RPC nodes out of sync behind a load balancer
			nextBlockCheckTime = time.Now().Add(10 * time.Second)
			s.nextBlockCheck = &nextBlockCheckTime
			s.logger.Log("liveness", "Lost a few blocks")
			s.lastBlockStatus = ErrLostFewBlocks
		}
	default:
		s.lastBlock = latest
		nextBlockCheckTime = time.Now().Add(90 * time.Second)
		s.nextBlockCheck = &nextBlockCheckTime
		s.lastBlockStatus = nil
	}

	return s.lastBlockStatus
}

func (s *Server) minimumSuccessRate() float32 {
	return float32(*s.healthCheckPercent) / 100
}

func (s *Server) testNodeErrorRate() error {
	minimumSuccessRate := s.minimumSuccessRate()
	nearSuccessRate := s.nearRequestAnalytics.GetSuccessRate()

	if nearSuccessRate < minimumSuccessRate {
		s.logger.Log("liveness", "NEAR request success rate is low", "rate", nearSuccessRate)
		return errors.Errorf("NEAR request success rate is %f<%f over the last %d requests", nearSuccessRate, minimumSuccessRate, s.nearRequestAnalytics.Requests())
	}
	return nil
}

func (s *Server) testZapierErrorRate() error {
	minimumSuccessRate := s.minimumSuccessRate()
	zapierSuccessRate := s.zapierRequestAnalytics.GetSuccessRate()

	if zapierSuccessRate < minimumSuccessRate {
		s.logger.Log("liveness", "operation success rate is low", "rate", zapierSuccessRate)
		return errors.Errorf("operation request success rate is %f<%f over the last %d requests", zapierSuccessRate, minimumSuccessRate, s.zapierRequestAnalytics.Requests())
	}
	return nil
}
