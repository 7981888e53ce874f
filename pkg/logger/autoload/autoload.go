// Package autoload configures the global logger on import:
//
//	import _ "github.com/example/tablebook/pkg/logger/autoload"
package autoload

import (
	configx "github.com/example/tablebook/pkg/config"
	logx "github.com/example/tablebook/pkg/logger"
)

func init() {
	logx.Init(*configx.MustNew[logx.Config]("LOG"))
}
