package main

import (
	"context"
	"log"
	"net/http"

	"github.com/aws/aws-lambda-go/lambda"

	"github.com/AnshRaj112/soloura-backend/internal/serverless"
)

func main() {
	rt, err := serverless.Bootstrap(context.Background())
	if err != nil {
		log.Fatalf("bootstrap: %v", err)
	}
	defer rt.Logger.Sync()

	lambda.Start(serverless.Adapt(http.HandlerFunc(rt.Analysis.AnalyzeMood)))
}
