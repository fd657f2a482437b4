// Package docs embeds the user documentation of the cellar command.
package docs

import (
	"embed"
	"fmt"
	"strings"
)

//go:embed *.md
var docs embed.FS

// Topic is a documentation topic, as listed in the readme by a
// "* name: summary" line.
type Topic struct {
	Name    string
	Summary string
}

// Topics returns the topics in the order the readme lists them.
func Topics() ([]Topic, error) {
	readme, err := docs.ReadFile("readme.md")
	if err != nil {
		return nil, err
	}
	var topics []Topic
	for _, line := range strings.Split(string(readme), "\n") {
		item, ok := strings.CutPrefix(line, "* ")
		if !ok {
			continue
		}
		name, summary, ok := strings.Cut(item, ":")
		if !ok {
			continue
		}
		topics = append(topics, Topic{Name: strings.TrimSpace(name), Summary: strings.TrimSpace(summary)})
	}
	return topics, nil
}

// GetAllTopics returns the topic names in readme order.
func GetAllTopics() ([]string, error) {
	topics, err := Topics()
	if err != nil {
		return nil, err
	}
	names := make([]string, len(topics))
	for i, t := range topics {
		names[i] = t.Name
	}
	return names, nil
}

// GetTopic returns the markdown of a topic. "*" is the readme followed by
// every topic.
func GetTopic(topic string) (string, error) {
	if topic == "*" {
		names, err := GetAllTopics()
		if err != nil {
			return "", err
		}
		return GetTopics(append([]string{"readme"}, names...)...)
	}
	content, err := docs.ReadFile(topic + ".md")
	if err != nil {
		return "", fmt.Errorf("topic %q not found, run 'cellar topic -l' for the list", topic)
	}
	return string(content), nil
}

// GetTopics concatenates the markdown of topics.
func GetTopics(topics ...string) (string, error) {
	var b strings.Builder
	for _, topic := range topics {
		content, err := GetTopic(topic)
		if err != nil {
			return "", err
		}
		b.WriteString(content)
		b.WriteString("\n")
	}
	return b.String(), nil
}
