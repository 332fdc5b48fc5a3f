package alexa

import (
	"github.com/aws/aws-lambda-go/lambda"
)

// LambdaHandler exposes the adapter as an AWS Lambda function. Errors such as
// a foreign application id surface as function errors, which Alexa reports
// to the user as a generic failure.
func (a *Adapter) LambdaHandler() lambda.Handler {
	return lambda.NewHandler(a.Handle)
}
