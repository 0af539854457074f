package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/fatih/color"
)

const baseURL = "http://localhost:3000/api/chat/v1"

// Simplified DTOs for the script
type createSessionResponse struct {
	Data struct {
		ID string `json:"id"`
	} `json:"data"`
}

type sendChatRequest struct {
	ChatSessionID string `json:"chat_session_id"`
	Chat          string `json:"chat"`
	FileName      string `json:"file_name,omitempty"`
	Code          string `json:"code,omitempty"`
}

type sendChatResponse struct {
	Data struct {
		Replies []struct {
			Name string `json:"name"`
			Chat string `json:"chat"`
		} `json:"replies"`
	} `json:"data"`
}

const sampleCode = `#include <stdio.h>

int fib(int n) {
    if (n < 2) return n;
    return fib(n - 1) + fib(n - 2);
}

int main(void) {
    for (int i = 0; i < 10; i++) {
        printf("%d\n", fib(i));
    }
    return 0;
}
`

type turn struct {
	chat     string
	fileName string
	code     string
}

func main() {
	banner := color.New(color.FgCyan, color.Bold)
	banner.Println("=== Code Analyzer Simulation Client ===")

	sessionID, err := createSession()
	if err != nil {
		log.Fatalf("Failed to create session: %v", err)
	}
	fmt.Printf("Session Created: %s\n", sessionID)

	turns := []turn{
		{chat: "upload", fileName: "fib.c", code: sampleCode},
		{chat: "question What does the fib function compute?"},
		{chat: "question What does the fib function compute?"}, // memoized replay
		{chat: "search again"},
		{chat: "extract report"},
		{chat: "finish"},
	}

	userColor := color.New(color.FgGreen)
	aiColor := color.New(color.FgYellow)

	for _, t := range turns {
		userColor.Printf("\nUSER: %s", t.chat)
		if t.fileName != "" {
			fmt.Printf(" (%s, %d bytes)", t.fileName, len(t.code))
		}
		fmt.Println()

		start := time.Now()
		replies, err := sendChat(sessionID, t)
		elapsed := time.Since(start)

		if err != nil {
			color.Red("Error: %v", err)
			continue
		}
		if len(replies) == 0 {
			fmt.Printf("AI (%v): <silent>\n", elapsed)
			continue
		}
		for _, r := range replies {
			aiColor.Printf("AI[%s] (%v): %s\n", r.name, elapsed, r.chat)
		}

		// Small delay to allow async audit logs to flush server side
		time.Sleep(500 * time.Millisecond)
	}
}

type reply struct {
	name string
	chat string
}

func createSession() (string, error) {
	req, _ := http.NewRequest("POST", baseURL+"/create-session", nil)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("status %d: %s", resp.StatusCode, string(body))
	}

	var out createSessionResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", err
	}
	return out.Data.ID, nil
}

func sendChat(sessionID string, t turn) ([]reply, error) {
	payload, _ := json.Marshal(sendChatRequest{
		ChatSessionID: sessionID,
		Chat:          t.chat,
		FileName:      t.fileName,
		Code:          t.code,
	})

	req, _ := http.NewRequest("POST", baseURL+"/send-chat", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("status %d: %s", resp.StatusCode, string(body))
	}

	var out sendChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, err
	}

	replies := make([]reply, 0, len(out.Data.Replies))
	for _, r := range out.Data.Replies {
		replies = append(replies, reply{name: r.Name, chat: r.Chat})
	}
	return replies, nil
}
