// toggle_storm hammers the delivery-option endpoint with alternating
// pickup/delivery toggles for one basket item. There is no cancellation of
// superseded toggles in this layer, so this tool is the quickest way to
// observe how the basket settles under rapid flipping.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"sync"
	"sync/atomic"
	"time"
)

func main() {
	var (
		serverURL = flag.String("server", "http://localhost:8080", "multiship server URL")
		basketID  = flag.String("basket", "", "basket id (required)")
		itemID    = flag.String("item", "", "product item id (required)")
		storeID   = flag.String("store", "", "pickup store id (required)")
		toggles   = flag.Int("n", 50, "number of toggles")
		workers   = flag.Int("workers", 5, "concurrent workers")
	)
	flag.Parse()

	if *basketID == "" || *itemID == "" || *storeID == "" {
		log.Fatal("basket, item and store are required")
	}

	client := &http.Client{Timeout: 30 * time.Second}
	var successCount, failCount atomic.Int32
	var wg sync.WaitGroup

	jobs := make(chan int)
	start := time.Now()

	for w := 0; w < *workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				body, _ := json.Marshal(map[string]any{
					"basket_id": *basketID,
					"item_id":   *itemID,
					"pickup":    i%2 == 0,
					"store_id":  *storeID,
				})
				resp, err := client.Post(*serverURL+"/api/delivery-option", "application/json", bytes.NewReader(body))
				if err != nil {
					failCount.Add(1)
					continue
				}
				resp.Body.Close()
				if resp.StatusCode == http.StatusOK {
					successCount.Add(1)
				} else {
					failCount.Add(1)
				}
			}
		}()
	}

	for i := 0; i < *toggles; i++ {
		jobs <- i
	}
	close(jobs)
	wg.Wait()
	elapsed := time.Since(start)

	fmt.Println("========== TOGGLE STORM RESULTS ==========")
	fmt.Printf("Toggles:    %d\n", *toggles)
	fmt.Printf("Successful: %d\n", successCount.Load())
	fmt.Printf("Failed:     %d\n", failCount.Load())
	fmt.Printf("Duration:   %v\n", elapsed)
	fmt.Println("==========================================")
}
