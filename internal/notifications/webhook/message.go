package webhook

import (
	"strings"

	"assetnexus/internal/notifications"
)

type message struct {
	Text        string       `json:"text"`
	Username    string       `json:"username,omitempty"`
	Channel     string       `json:"channel,omitempty"`
	IconEmoji   string       `json:"icon_emoji,omitempty"`
	Attachments []attachment `json:"attachments,omitempty"`
}

type attachment struct {
	Title  string  `json:"title"`
	Color  string  `json:"color,omitempty"`
	Fields []field `json:"fields"`
	Footer string  `json:"footer,omitempty"`
	Ts     int64   `json:"ts,omitempty"`
}

type field struct {
	Title string `json:"title"`
	Value string `json:"value"`
	Short bool   `json:"short"`
}

func (s *Sender) message(n notifications.Notification) message {
	color := "good"
	if n.Action == "checked out" {
		color = "#439FE0"
	}

	fields := []field{{Title: "Item", Value: n.Item.Name, Short: true}}
	if n.Target.Name != "" {
		title := "From"
		if n.Action == "checked out" {
			title = "To"
		}
		fields = append(fields, field{Title: title, Value: n.Target.Name, Short: true})
	}
	if n.Actor.Name != "" {
		fields = append(fields, field{Title: "By", Value: n.Actor.Name, Short: true})
	}
	if n.Note != "" {
		fields = append(fields, field{Title: "Note", Value: n.Note})
	}

	return message{
		Text:      n.Text(),
		Username:  s.cfg.Username,
		Channel:   s.cfg.Channel,
		IconEmoji: s.cfg.IconEmoji,
		Attachments: []attachment{{
			Title:  title(n),
			Color:  color,
			Fields: fields,
			Footer: string(n.Kind),
			Ts:     n.OccurredAt.Unix(),
		}},
	}
}

// title renders e.g. "License Seat Checked In".
func title(n notifications.Notification) string {
	words := strings.Fields(strings.ReplaceAll(string(n.Item.Kind), "_", " ") + " " + n.Action)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
