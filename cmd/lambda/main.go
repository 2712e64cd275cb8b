package main

import (
	"context"
	"log"

	"stockforecast/api"
	"stockforecast/cmd"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	ginadapter "github.com/awslabs/aws-lambda-go-api-proxy/gin"
)

type lambdaHandler struct {
	apiHandler *api.ApiHandler
	ginLambda  *ginadapter.GinLambda
}

func (m lambdaHandler) Handler(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	m.apiHandler.Logger.Infow("lambda request", "method", req.HTTPMethod, "path", req.Path)
	return m.ginLambda.ProxyWithContext(ctx, req)
}

// Sessions live in memory, so they only survive as long as a warm
// container. The scheduler is not started here.
func main() {
	apiHandler, _, err := cmd.InitializeDependencies()
	if err != nil {
		log.Fatal(err)
	}
	defer cmd.CloseDependencies(apiHandler)

	handler := lambdaHandler{
		apiHandler: apiHandler,
		ginLambda:  ginadapter.New(apiHandler.InitializeRouterEngine()),
	}
	lambda.Start(handler.Handler)
}
