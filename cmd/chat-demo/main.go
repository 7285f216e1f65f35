// README: Console chat loop for trying the assistant without LINE.
package main

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	"teaw/internal/ai"
	"teaw/internal/config"
	"teaw/internal/maps"
	"teaw/internal/modules/chat"
	"teaw/internal/modules/province"
	"teaw/internal/modules/session"
	"teaw/internal/modules/trip"
	"teaw/internal/weather"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()

	var tripMaps trip.MapsAPI
	var provMaps province.MapsAPI
	if cfg.Maps.APIKey != "" {
		mapsClient, err := maps.NewClient(cfg.Maps.APIKey)
		if err != nil {
			log.Fatalf("maps init: %v", err)
		}
		tripMaps, provMaps = mapsClient, mapsClient
	}

	var chatAI chat.TextGenerator
	if cfg.AI.GeminiKey != "" {
		provider, err := ai.NewGeminiProvider(ctx, cfg.AI.GeminiKey)
		if err != nil {
			log.Fatalf("gemini init: %v", err)
		}
		defer provider.Close()
		chatAI = provider
	}

	weatherSvc := weather.NewService(cfg.Weather.APIKey, nil)
	tripSvc := trip.NewService(tripMaps, weatherSvc, cfg.Search)
	provinceSvc := province.NewService(provMaps, weatherSvc, cfg.Search)
	chatSvc := chat.NewService(session.NewStore(), tripSvc, provinceSvc, chatAI, nil, nil)

	fmt.Println("พิมพ์ข้อความเพื่อคุยกับบอท (Ctrl+D เพื่อออก)")
	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), 64*1024)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}

		reply := chatSvc.HandleText(ctx, "console", text)
		fmt.Println(reply.Text)
		if len(reply.Actions) > 0 {
			var labels []string
			for _, a := range reply.Actions {
				labels = append(labels, fmt.Sprintf("[%s -> %s]", a.Label, a.Text))
			}
			fmt.Println(strings.Join(labels, " "))
		}
		fmt.Println()
	}
}
