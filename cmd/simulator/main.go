package main

import (
	"flag"
	"fmt"
	"os"
	"time"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	// Global flags
	apiURL := "http://localhost:8080"
	if envURL := os.Getenv("API_URL"); envURL != "" {
		apiURL = envURL
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "full":
		fullCmd(apiURL, args)
	case "populate":
		populateCmd(apiURL, args)
	case "chat":
		chatCmd(apiURL, args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`RideTrack Simulator - Development tool for seeding riders, groups, and rides

USAGE:
  simulator <command> [options]

COMMANDS:
  full      Create a group with fake riders, connect them, and start a ride
  populate  Add fake riders to an existing group
  chat      Join a group's chat room with fake riders and exchange messages
  help      Show this help message

ENVIRONMENT:
  API_URL   Backend API URL (default: http://localhost:8080)

EXAMPLES:
  # Create a group with 5 riders and an active ride
  simulator full

  # Create a group with 8 riders, no ride started
  simulator full --count=8 --skip-ride

  # Add 3 more riders to an existing group
  simulator populate --group=<group-id> --count=3

  # Send chat traffic to a group's room
  simulator chat --group=<group-id> --count=3`)
}

func fullCmd(apiURL string, args []string) {
	fs := flag.NewFlagSet("full", flag.ExitOnError)
	count := fs.Int("count", 5, "Number of fake riders to create")
	skipRide := fs.Bool("skip-ride", false, "Skip starting a ride session")
	fs.Parse(args)

	if *count < 1 || *count > 50 {
		fmt.Println("Error: --count must be between 1 and 50")
		os.Exit(1)
	}

	client := NewAPIClient(apiURL)

	fmt.Println("=== RideTrack Simulator: Full Flow ===")
	fmt.Println()

	// 1. Create the group with a creator user
	fmt.Print("Creating group creator... ")
	creator, creatorToken, err := client.RegisterUser("GroupLead")
	if err != nil {
		fmt.Printf("FAILED\n  Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("OK (user: %s)\n", creator.Username)

	groupName := fmt.Sprintf("Sim Ride %d", time.Now().UnixNano()%100000)
	group, err := client.CreateGroup(creatorToken, groupName)
	if err != nil {
		fmt.Printf("Failed to create group: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("  Group created: %s (id: %s)\n", group.Name, group.ID)

	// 2. Create riders, join them, and connect them to the creator
	fmt.Println()
	fmt.Printf("Adding %d riders to the group:\n", *count)

	for i := 1; i <= *count; i++ {
		name := fmt.Sprintf("Rider%d", i)
		user, token, err := client.RegisterUser(name)
		if err != nil {
			fmt.Printf("  [%d/%d] FAILED to create rider: %v\n", i, *count, err)
			os.Exit(1)
		}

		if err := client.JoinGroup(token, group.ID); err != nil {
			fmt.Printf("  [%d/%d] FAILED to join group: %v\n", i, *count, err)
			os.Exit(1)
		}

		// Rider sends a connection request; the creator accepts it
		if err := client.SendConnection(token, creator.ID); err != nil {
			fmt.Printf("Warning: Failed to send connection for %s: %v\n", user.Username, err)
		} else if err := client.AcceptConnection(creatorToken, user.ID); err != nil {
			fmt.Printf("Warning: Failed to accept connection from %s: %v\n", user.Username, err)
		}

		fmt.Printf("  [%d/%d] %s joined\n", i, *count, user.Username)
	}

	if *skipRide {
		fmt.Println()
		fmt.Println("=========================================")
		fmt.Println("  GROUP POPULATED (ride skipped)")
		fmt.Println("=========================================")
		fmt.Println()
		fmt.Printf("  Group ID: %s\n", group.ID)
		fmt.Println()
		return
	}

	// 3. Start a ride
	fmt.Println()
	fmt.Print("Starting ride session... ")
	ride, err := client.StartRide(creatorToken, group.ID)
	if err != nil {
		fmt.Printf("FAILED\n  Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("OK (ride: %s)\n", ride.RideID)

	fmt.Println()
	fmt.Println("=========================================")
	fmt.Println("  GROUP READY WITH ACTIVE RIDE")
	fmt.Println("=========================================")
	fmt.Println()
	fmt.Printf("  Group ID: %s\n", group.ID)
	fmt.Printf("  Ride ID:  %s\n", ride.RideID)
	fmt.Println()
	fmt.Printf("  Chat room: simulator chat --group=%s\n", group.ID)
	fmt.Println()
}

func populateCmd(apiURL string, args []string) {
	fs := flag.NewFlagSet("populate", flag.ExitOnError)
	groupID := fs.String("group", "", "Group ID (required)")
	count := fs.Int("count", 5, "Number of riders to add")
	fs.Parse(args)

	if *groupID == "" {
		fmt.Println("Error: --group is required")
		fmt.Println("\nUsage: simulator populate --group=<group-id> [--count=5]")
		os.Exit(1)
	}

	client := NewAPIClient(apiURL)

	fmt.Printf("Adding %d riders to group %s...\n\n", *count, *groupID)

	for i := 0; i < *count; i++ {
		name := fmt.Sprintf("Rider%d", i+1)
		user, token, err := client.RegisterUser(name)
		if err != nil {
			fmt.Printf("  [%d/%d] FAILED to create rider: %v\n", i+1, *count, err)
			continue
		}

		if err := client.JoinGroup(token, *groupID); err != nil {
			fmt.Printf("  [%d/%d] FAILED to join: %v\n", i+1, *count, err)
			continue
		}

		fmt.Printf("  [%d/%d] %s joined\n", i+1, *count, user.Username)
	}

	fmt.Println()
	fmt.Println("Done!")
}

func chatCmd(apiURL string, args []string) {
	fs := flag.NewFlagSet("chat", flag.ExitOnError)
	groupID := fs.String("group", "", "Group ID used as the room name (required)")
	count := fs.Int("count", 3, "Number of chatting riders")
	messages := fs.Int("messages", 3, "Messages each rider sends")
	fs.Parse(args)

	if *groupID == "" {
		fmt.Println("Error: --group is required")
		fmt.Println("\nUsage: simulator chat --group=<group-id> [--count=3] [--messages=3]")
		os.Exit(1)
	}

	client := NewAPIClient(apiURL)

	fmt.Printf("Connecting %d riders to room %s...\n\n", *count, *groupID)

	for i := 0; i < *count; i++ {
		name := fmt.Sprintf("Chatter%d", i+1)
		user, token, err := client.RegisterUser(name)
		if err != nil {
			fmt.Printf("  [%d/%d] FAILED to create rider: %v\n", i+1, *count, err)
			continue
		}

		conn, err := client.DialRoom(token, *groupID, user.Username)
		if err != nil {
			fmt.Printf("  [%d/%d] FAILED to connect: %v\n", i+1, *count, err)
			continue
		}

		for m := 1; m <= *messages; m++ {
			msg := fmt.Sprintf("Message %d from %s", m, user.Username)
			if err := client.SendChat(conn, *groupID, user.Username, msg); err != nil {
				fmt.Printf("  [%d/%d] FAILED to send: %v\n", i+1, *count, err)
				break
			}
			time.Sleep(100 * time.Millisecond)
		}

		conn.Close()
		fmt.Printf("  [%d/%d] %s sent %d message(s)\n", i+1, *count, user.Username, *messages)
	}

	fmt.Println()
	fmt.Println("Done!")
}
