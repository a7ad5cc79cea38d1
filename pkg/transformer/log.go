package transformer

import (
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/nearzap/nearzap/pkg/near"
)

func GetLogger(op Operation, n *near.Near) log.Logger {
	return log.WithPrefix(level.Info(n.GetLogger()), "operation", op.Key(), "network", n.Network())
}

func GetDebugLogger(op Operation, n *near.Near) log.Logger {
	return log.WithPrefix(n.GetDebugLogger(), "operation", op.Key(), "network", n.Network())
}

func GetErrorLogger(op Operation, n *near.Near) log.Logger {
	return log.WithPrefix(n.GetErrorLogger(), "operation", op.Key(), "network", n.Network())
}
