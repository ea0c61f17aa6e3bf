package claude

import (
	"bytes"
	"encoding/json"
)

// チャンク種別
const (
	ChunkTypeSystem     = "system"
	ChunkTypeText       = "text"
	ChunkTypeToolStart  = "tool_start"
	ChunkTypeToolUse    = "tool_use"
	ChunkTypeToolResult = "tool_result"
	ChunkTypeResult     = "result"
)

// StreamEvent はエージェントプロセスのストリーム出力から解析された1イベント
type StreamEvent struct {
	ChunkType string
	ToolName  string
	ToolInput json.RawMessage
	Content   string
	IsError   bool
}

// toolDetailKeys はツール入力からラベルを導出する際に参照するキーの優先順
var toolDetailKeys = []string{"file_path", "command", "path", "pattern", "description"}

// ToolDetail はツール入力からファイルパスやコマンドなどの短いラベルを導出する。
// ToolInputの解析はラベルが必要になったこの時点まで遅延される。
func (e StreamEvent) ToolDetail() string {
	if len(e.ToolInput) == 0 {
		return ""
	}
	var input map[string]interface{}
	if err := json.Unmarshal(e.ToolInput, &input); err != nil {
		return ""
	}
	for _, key := range toolDetailKeys {
		if v, ok := input[key].(string); ok && v != "" {
			return truncateDetail(v, 80)
		}
	}
	return ""
}

func truncateDetail(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}

// ストリーム1行分のJSON構造
type streamLine struct {
	Type    string         `json:"type"`
	Subtype string         `json:"subtype,omitempty"`
	Message *streamMessage `json:"message,omitempty"`
	Event   *contentEvent  `json:"event,omitempty"`
	Result  string         `json:"result,omitempty"`
	IsError bool           `json:"is_error,omitempty"`
}

type streamMessage struct {
	Role    string         `json:"role"`
	Content []contentBlock `json:"content"`
}

type contentBlock struct {
	Type    string          `json:"type"`
	Text    string          `json:"text,omitempty"`
	Name    string          `json:"name,omitempty"`
	Input   json.RawMessage `json:"input,omitempty"`
	IsError bool            `json:"is_error,omitempty"`
}

type contentEvent struct {
	Type         string        `json:"type"`
	ContentBlock *contentBlock `json:"content_block,omitempty"`
}

// ParseStreamLine はストリーム出力の1行をStreamEventの列に変換する。
// 解析できない行は無視してnilを返す。
func ParseStreamLine(line []byte) []StreamEvent {
	line = bytes.TrimSpace(line)
	if len(line) == 0 {
		return nil
	}

	var sl streamLine
	if err := json.Unmarshal(line, &sl); err != nil {
		return nil
	}

	switch sl.Type {
	case "system":
		return []StreamEvent{{ChunkType: ChunkTypeSystem, Content: sl.Subtype}}
	case "assistant":
		return parseAssistantLine(sl.Message)
	case "user":
		return parseUserLine(sl.Message)
	case "stream_event":
		return parseStreamEventLine(sl.Event)
	case "result":
		return []StreamEvent{{ChunkType: ChunkTypeResult, Content: sl.Result, IsError: sl.IsError}}
	default:
		return nil
	}
}

func parseAssistantLine(msg *streamMessage) []StreamEvent {
	if msg == nil {
		return nil
	}
	var events []StreamEvent
	for _, block := range msg.Content {
		switch block.Type {
		case "text":
			if block.Text != "" {
				events = append(events, StreamEvent{ChunkType: ChunkTypeText, Content: block.Text})
			}
		case "tool_use":
			events = append(events, StreamEvent{
				ChunkType: ChunkTypeToolUse,
				ToolName:  block.Name,
				ToolInput: block.Input,
			})
		}
	}
	return events
}

func parseUserLine(msg *streamMessage) []StreamEvent {
	if msg == nil {
		return nil
	}
	var events []StreamEvent
	for _, block := range msg.Content {
		if block.Type == "tool_result" {
			events = append(events, StreamEvent{ChunkType: ChunkTypeToolResult, IsError: block.IsError})
		}
	}
	return events
}

func parseStreamEventLine(ev *contentEvent) []StreamEvent {
	if ev == nil || ev.Type != "content_block_start" || ev.ContentBlock == nil {
		return nil
	}
	if ev.ContentBlock.Type != "tool_use" {
		return nil
	}
	return []StreamEvent{{ChunkType: ChunkTypeToolStart, ToolName: ev.ContentBlock.Name}}
}
