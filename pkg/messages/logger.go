package messages

import (
	"context"
	"log"

	regnode "github.com/dogecoinfoundation/regnode/pkg"
	"github.com/tjstebbing/conductor"
	"gopkg.in/natefinch/lumberjack.v2"
)

// MessageLogger writes bus messages to a rotated log file. Register
// it on the bus with the EventTypes it should record.
type MessageLogger struct {
	// MessageLogger receives regnode.Message via Rec
	Rec chan regnode.Message
	// and logs them via Log
	Log *log.Logger
}

// Implements regnode.MessageSubscriber
func (l MessageLogger) GetChan() chan regnode.Message {
	return l.Rec
}

// Implements conductor.Service
func (l MessageLogger) Run(started, stopped chan bool, stop chan context.Context) error {
	go func() {
		started <- true
		for {
			select {
			// handle stopping the service
			case <-stop:
				stopped <- true
				return
			case msg := <-l.Rec:
				l.Log.Printf("%s (%s): %s\n",
					msg.EventType.Type(),
					msg.ID,
					msg.Message)
			}
		}
	}()
	return nil
}

func NewMessageLogger(path string) MessageLogger {
	if path == "" {
		path = "./events.log"
	}
	l := MessageLogger{
		make(chan regnode.Message, 100),
		log.New(&lumberjack.Logger{
			Filename: path,
			Compress: true,
		}, "", log.Ltime|log.Lmicroseconds),
	}
	return l
}

// SetUpLoggers registers a MessageLogger per [loggers.X] config block,
// subscribed to the event types it names.
func SetUpLoggers(c *conductor.Conductor, bus regnode.MessageBus, conf regnode.Config) {
	for name, lconf := range conf.Loggers {
		logger := NewMessageLogger(lconf.Path)
		types := make([]regnode.EventType, 0, len(lconf.Types))
		for _, t := range lconf.Types {
			for _, et := range regnode.EVENT_TYPES {
				if et.Type() == t {
					types = append(types, et)
				}
			}
		}
		if len(types) == 0 {
			types = append(types, regnode.EVENT_ALL("ALL"))
		}
		bus.Register(logger, types...)
		c.Service("Logger-"+name, logger)
	}
}
