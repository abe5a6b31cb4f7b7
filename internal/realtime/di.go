package realtime

import (
	"timebridge/internal/util/logger"
)

var hub = NewHub(logger.GetLogger())

var notifier = &Notifier{
	logger: logger.GetLogger(),
}

var listener = &Listener{
	hub:    hub,
	logger: logger.GetLogger(),
}

var realtimeController = &RealtimeController{
	hub: hub,
}

func GetHub() *Hub {
	return hub
}

func GetNotifier() *Notifier {
	return notifier
}

func GetListener() *Listener {
	return listener
}

func GetRealtimeController() *RealtimeController {
	return realtimeController
}
