// Command churn-client drives a locally running churn-api the way the web form does:
// it reads the label catalog, then submits one record per contract type.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/miradorstack/churn-api/internal/models"
	"github.com/miradorstack/churn-api/internal/utils"
)

func main() {
	var baseURL string
	flag.StringVar(&baseURL, "url", "http://localhost:8000", "Base URL of the churn API")
	flag.Parse()

	logger := utils.NewLogger("info", false, os.Stdout)
	client := &http.Client{Timeout: 5 * time.Second}

	if err := getJSON(client, baseURL+"/health", &models.HealthStatus{}); err != nil {
		logger.Error("health check failed", slog.Any("error", err))
		os.Exit(1)
	}

	var catalog models.LabelCatalog
	if err := getJSON(client, baseURL+"/labels", &catalog); err != nil {
		logger.Error("labels failed", slog.Any("error", err))
		os.Exit(1)
	}

	record := sampleRecord()
	for _, contract := range catalog.Contract {
		record.Contract = contract
		start := time.Now()
		var resp models.ChurnResponse
		if err := postJSON(client, baseURL+"/predict", record, &resp); err != nil {
			logger.Error("predict failed", slog.String("contract", contract), slog.Any("error", err))
			continue
		}
		logger.Info("prediction",
			slog.String("contract", contract),
			slog.String("churn", resp.Churn),
			slog.Float64("probability", resp.Probability),
			slog.Duration("latency", time.Since(start)),
		)
	}
}

func sampleRecord() models.ChurnRequest {
	return models.ChurnRequest{
		TotalCharges:     500.0,
		MonthlyCharges:   70.5,
		Tenure:           12,
		SeniorCitizen:    0,
		Partner:          "Yes",
		Dependents:       "No",
		PhoneService:     "Yes",
		MultipleLines:    "No",
		OnlineSecurity:   "No",
		OnlineBackup:     "No",
		DeviceProtection: "No",
		TechSupport:      "No",
		StreamingTV:      "No",
		StreamingMovies:  "No",
		PaperlessBilling: "Yes",
		PaymentMethod:    "Electronic check",
		Contract:         "Month-to-month",
		InternetService:  "Fiber optic",
		Gender:           "Female",
	}
}

func getJSON(client *http.Client, url string, out any) error {
	resp, err := client.Get(url)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return decode(resp, out)
}

func postJSON(client *http.Client, url string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	resp, err := client.Post(url, "application/json", bytes.NewReader(body))
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return decode(resp, out)
}

func decode(resp *http.Response, out any) error {
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s: status %d: %s", resp.Request.URL.Path, resp.StatusCode, bytes.TrimSpace(data))
	}
	return json.Unmarshal(data, out)
}
