package bot

import (
	"strings"

	"assistbot/internal/channel"
)

// Route identifies the handler responsible for an inbound event.
type Route int

const (
	RouteIgnore Route = iota
	RouteChat
	RouteAutoSearch
	RouteReset
	RouteWeb
	RouteImage
	RouteTTS
	RouteWhoAmI
	RouteShutdown
	RouteVoice
	RoutePhoto
	RouteDocument
	RouteHelp
)

var routeNames = map[Route]string{
	RouteIgnore:     "ignore",
	RouteChat:       "chat",
	RouteAutoSearch: "auto_search",
	RouteReset:      "reset",
	RouteWeb:        "web",
	RouteImage:      "image",
	RouteTTS:        "tts",
	RouteWhoAmI:     "whoami",
	RouteShutdown:   "shutdown",
	RouteVoice:      "voice",
	RoutePhoto:      "photo",
	RouteDocument:   "document",
	RouteHelp:       "help",
}

func (r Route) String() string {
	if name, ok := routeNames[r]; ok {
		return name
	}
	return "unknown"
}

var commands = map[string]Route{
	"reset":    RouteReset,
	"web":      RouteWeb,
	"image":    RouteImage,
	"tts":      RouteTTS,
	"whoami":   RouteWhoAmI,
	"shutdown": RouteShutdown,
	"start":    RouteHelp,
	"help":     RouteHelp,
}

// Command is a parsed slash command.
type Command struct {
	Name string   // lowercased, without slash or @botname
	Args []string // whitespace-separated arguments
}

// Payload returns the arguments joined by single spaces.
func (c Command) Payload() string {
	return strings.Join(c.Args, " ")
}

// Decision is the router's output for one event.
type Decision struct {
	Route   Route
	Command Command
}

// Classify maps an inbound event to exactly one route. It performs no I/O.
func Classify(msg channel.InboundMessage, keywords *KeywordSet) Decision {
	switch msg.Kind {
	case channel.KindVoice:
		return attachmentDecision(msg, RouteVoice)
	case channel.KindPhoto:
		return attachmentDecision(msg, RoutePhoto)
	case channel.KindDocument:
		return attachmentDecision(msg, RouteDocument)
	}

	text := strings.TrimSpace(msg.Text)
	if text == "" {
		return Decision{Route: RouteIgnore}
	}

	if cmd, ok := ParseCommand(text); ok {
		route, known := commands[cmd.Name]
		if !known {
			route = RouteHelp
		}
		return Decision{Route: route, Command: cmd}
	}

	if keywords.Match(text) {
		return Decision{Route: RouteAutoSearch}
	}
	return Decision{Route: RouteChat}
}

func attachmentDecision(msg channel.InboundMessage, route Route) Decision {
	if msg.Attachment == nil {
		return Decision{Route: RouteIgnore}
	}
	return Decision{Route: route}
}

// ParseCommand splits "/Name@bot arg1 arg2" into a Command.
func ParseCommand(text string) (Command, bool) {
	fields := strings.Fields(text)
	if len(fields) == 0 || !strings.HasPrefix(fields[0], "/") {
		return Command{}, false
	}
	name := strings.TrimPrefix(fields[0], "/")
	if at := strings.IndexByte(name, '@'); at >= 0 {
		name = name[:at]
	}
	if name == "" {
		return Command{}, false
	}
	return Command{Name: strings.ToLower(name), Args: fields[1:]}, true
}
