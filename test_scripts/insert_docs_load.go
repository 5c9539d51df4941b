package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"strings"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
)

// User represents the structure of a user document to insert
type User struct {
	Name  string `json:"name"`
	Age   int    `json:"age"`
	Email string `json:"email"`
}

// generateRandomName generates a random 6-letter name
func generateRandomName() string {
	const letters = "abcdefghijklmnopqrstuvwxyz"
	name := make([]byte, 6)
	for i := range name {
		name[i] = letters[rand.Intn(len(letters))]
	}
	// Capitalize first letter
	name[0] = name[0] - 32
	return string(name)
}

// generateRandomAge generates a random age between 18 and 99
func generateRandomAge() int {
	return rand.Intn(82) + 18
}

func randomUser() User {
	name := generateRandomName()
	return User{
		Name:  name,
		Age:   generateRandomAge(),
		Email: fmt.Sprintf("%s@example.com", strings.ToLower(name)),
	}
}

func post(url string, body interface{}) error {
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal body: %w", err)
	}

	resp, err := http.Post(url, "application/json", bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		return fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}
	return nil
}

// insertUsers sends one request: a single insert, or a batch when more
// than one user is given.
func insertUsers(baseURL, collection string, users []User) error {
	if len(users) == 1 {
		return post(baseURL+"/collections/"+collection+"/documents", users[0])
	}
	return post(baseURL+"/collections/"+collection+"/batch", map[string]interface{}{"documents": users})
}

// countDocuments asks the server for the collection total.
func countDocuments(baseURL, collection string) (int64, error) {
	resp, err := http.Get(baseURL + "/collections/" + collection + "/find?limit=1")
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}
	var page struct {
		Total int64 `json:"total"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return 0, err
	}
	return page.Total, nil
}

func main() {
	var (
		numUsers   = flag.Int("n", 1000, "Number of users to insert")
		serverURL  = flag.String("url", "http://localhost:8080", "Server URL")
		collection = flag.String("collection", "users", "Target collection")
		workers    = flag.Int("workers", 8, "Concurrent clients")
		batchSize  = flag.Int("batch", 1, "Users per request (1 uses the single insert endpoint)")
	)
	flag.Parse()

	if *numUsers <= 0 || *workers <= 0 || *batchSize <= 0 {
		fmt.Println("Error: -n, -workers and -batch must be greater than 0")
		os.Exit(1)
	}

	before, err := countDocuments(*serverURL, *collection)
	if err != nil {
		// The collection may not exist yet
		before = 0
	}

	fmt.Printf("Starting load test: inserting %d users into '%s' at %s (%d workers, batch %d)\n",
		*numUsers, *collection, *serverURL, *workers, *batchSize)
	fmt.Println("Press Ctrl+C to stop early")

	startTime := time.Now()
	var successCount, errorCount, sent atomic.Int64
	reportInterval := int64(max(1, *numUsers/10))

	var g errgroup.Group
	g.SetLimit(*workers)
	for start := 0; start < *numUsers; start += *batchSize {
		n := min(*batchSize, *numUsers-start)
		users := make([]User, n)
		for i := range users {
			users[i] = randomUser()
		}

		g.Go(func() error {
			if err := insertUsers(*serverURL, *collection, users); err != nil {
				errorCount.Add(int64(n))
				fmt.Printf("Error inserting users %d-%d: %v\n", start+1, start+n, err)
			} else {
				successCount.Add(int64(n))
			}

			done := sent.Add(int64(n))
			if done/reportInterval != (done-int64(n))/reportInterval || done == int64(*numUsers) {
				elapsed := time.Since(startTime)
				fmt.Printf("Progress: %d/%d users (%.1f%%) - Rate: %.1f users/sec - Success: %d, Errors: %d\n",
					done, *numUsers, float64(done)/float64(*numUsers)*100, float64(done)/elapsed.Seconds(),
					successCount.Load(), errorCount.Load())
			}
			return nil
		})
	}
	g.Wait()

	// Final statistics
	totalTime := time.Since(startTime)

	fmt.Println("\n" + strings.Repeat("=", 60))
	fmt.Println("LOAD TEST COMPLETE")
	fmt.Println(strings.Repeat("=", 60))
	fmt.Printf("Total users attempted: %d\n", *numUsers)
	fmt.Printf("Successful inserts:    %d\n", successCount.Load())
	fmt.Printf("Failed inserts:        %d\n", errorCount.Load())
	fmt.Printf("Success rate:          %.2f%%\n", float64(successCount.Load())/float64(*numUsers)*100)
	fmt.Printf("Total time:            %v\n", totalTime)
	fmt.Printf("Average rate:          %.2f users/sec\n", float64(*numUsers)/totalTime.Seconds())

	after, err := countDocuments(*serverURL, *collection)
	if err != nil {
		fmt.Printf("\nWarning: could not read collection total: %v\n", err)
		os.Exit(1)
	}
	if after-before != successCount.Load() {
		fmt.Printf("\nWarning: collection grew by %d but %d inserts were acknowledged\n", after-before, successCount.Load())
		os.Exit(1)
	}

	if errorCount.Load() > 0 {
		fmt.Printf("\nWarning: %d errors occurred during the load test\n", errorCount.Load())
		os.Exit(1)
	}

	fmt.Println("\nLoad test completed successfully!")
}
