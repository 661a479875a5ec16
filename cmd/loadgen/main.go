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

// loadgen hammers one listing/lot pair with concurrent purchases and
// reports how many succeeded versus hit a stock conflict. With stock S
// and N requests of quantity 1, exactly S purchases must succeed.
func main() {
	baseURL := flag.String("url", "http://localhost:8080", "server base URL")
	seller := flag.String("seller", "seller-load", "seller user id")
	stock := flag.Int("stock", 20, "initial lot stock")
	requests := flag.Int("requests", 50, "concurrent purchase requests")
	flag.Parse()

	client := &http.Client{Timeout: 10 * time.Second}

	lotID := createLot(client, *baseURL, *seller, *stock)
	listingID := createListing(client, *baseURL, *seller, *stock)
	log.Printf("created lot %s and listing %s with stock %d", lotID, listingID, *stock)

	var successCount, conflictCount, otherCount atomic.Int32
	var wg sync.WaitGroup
	start := time.Now()

	for i := 0; i < *requests; i++ {
		wg.Add(1)
		go func(buyer int) {
			defer wg.Done()

			body, _ := json.Marshal(map[string]interface{}{
				"listing_id": listingID,
				"lot_id":     lotID,
				"quantity":   1,
			})
			req, _ := http.NewRequest(http.MethodPost, *baseURL+"/api/orders", bytes.NewReader(body))
			req.Header.Set("Content-Type", "application/json")
			req.Header.Set("X-User-Id", fmt.Sprintf("buyer-%d", buyer))
			req.Header.Set("X-User-Role", "buyer")

			resp, err := client.Do(req)
			if err != nil {
				otherCount.Add(1)
				return
			}
			resp.Body.Close()

			switch resp.StatusCode {
			case http.StatusCreated:
				successCount.Add(1)
			case http.StatusConflict:
				conflictCount.Add(1)
			default:
				otherCount.Add(1)
			}
		}(i)
	}

	wg.Wait()
	elapsed := time.Since(start)

	log.Printf("done in %v: %d ok, %d conflict, %d other",
		elapsed, successCount.Load(), conflictCount.Load(), otherCount.Load())
	if int(successCount.Load()) != min(*stock, *requests) {
		log.Fatalf("OVERSELL OR UNDERSELL: expected %d successes", min(*stock, *requests))
	}
	log.Println("stock conserved")
}

func createLot(client *http.Client, baseURL, seller string, stock int) string {
	body, _ := json.Marshal(map[string]interface{}{
		"part_number":   "LM358N",
		"manufacturer":  "TI",
		"source":        "authorized",
		"condition":     "new",
		"available_qty": stock,
	})
	return post(client, baseURL+"/api/lots", seller, "seller", body)
}

func createListing(client *http.Client, baseURL, seller string, qty int) string {
	body, _ := json.Marshal(map[string]interface{}{
		"part_number":    "LM358N",
		"manufacturer":   "TI",
		"quantity":       qty,
		"unit_price_jpy": 120,
	})
	return post(client, baseURL+"/api/listings", seller, "seller", body)
}

func post(client *http.Client, url, userID, role string, body []byte) string {
	req, _ := http.NewRequest(http.MethodPost, url, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-Id", userID)
	req.Header.Set("X-User-Role", role)

	resp, err := client.Do(req)
	if err != nil {
		log.Fatalf("POST %s failed: %v", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		log.Fatalf("POST %s: unexpected status %d", url, resp.StatusCode)
	}

	var out struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil || out.ID == "" {
		log.Fatalf("POST %s: could not decode id: %v", url, err)
	}
	return out.ID
}
