package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"langpal/internal/di"
	"langpal/internal/poll"
)

func main() {
	log.Println("Starting LangPal...")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	app, cleanup, err := di.InitializeApp(ctx)
	if err != nil {
		log.Fatalf("Failed to initialize: %v", err)
	}
	defer cleanup()

	log.Printf("Store ready at %s (%s)", app.Config.Storage.Path, app.Config.Environment)

	current := app.Directory.Current()
	if current == nil {
		log.Println("No active session; sign up or log in through the app surface")
	} else {
		log.Printf("Active session: @%s", current.Username)

		// Keep the chat list fresh for the logged-in account, the same
		// refresh the list screen runs.
		lister := poll.NewChatListPoller(app.Chat, current.ID, app.Config.Poll.ChatListInterval, nil)
		go lister.Run(ctx)
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down LangPal...")
	cancel()
	log.Println("LangPal stopped")
}
