package client

import "github.com/mindloom/insightserver/pkg/handler"

type transport interface {
	call(route handler.Route, request interface{}, response interface{}) error
	shutdown()
}
