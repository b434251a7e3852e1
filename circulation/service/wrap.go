package service

import (
	"github.com/Shibashis-Mandal/Library-Management-System/circulation/shell"
	"github.com/Shibashis-Mandal/Library-Management-System/circulation/shell/observable"
)

func wrapCommand[C shell.Command](handler shell.CoreCommandHandler[C], o Observability) (shell.CoreCommandHandler[C], error) {
	return observable.NewCommandWrapper[C](
		handler,
		observable.WithCommandMetrics[C](o.Metrics),
		observable.WithCommandTracing[C](o.Tracing),
		observable.WithCommandContextualLogging[C](o.ContextualLogger),
		observable.WithCommandLogging[C](o.Logger),
	)
}

func wrapQuery[Q shell.Query, R shell.QueryResult](handler shell.CoreQueryHandler[Q, R], o Observability) (shell.CoreQueryHandler[Q, R], error) {
	return observable.NewQueryWrapper[Q, R](
		handler,
		observable.WithQueryMetrics[Q, R](o.Metrics),
		observable.WithQueryTracing[Q, R](o.Tracing),
		observable.WithQueryContextualLogging[Q, R](o.ContextualLogger),
		observable.WithQueryLogging[Q, R](o.Logger),
	)
}
