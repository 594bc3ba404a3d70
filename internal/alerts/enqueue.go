package alerts

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
)

// ensureClient returns a usable client instance
func ensureClient() *asynq.Client {
	if client == nil {
		Init("")
	}
	return client
}

func formatAmount(minor int64) string {
	sign := ""
	if minor < 0 {
		sign = "-"
		minor = -minor
	}
	return fmt.Sprintf("%s%d.%02d", sign, minor/100, minor%100)
}

// EnqueueWelcomeEmail schedules a welcome email to a freshly registered user
func EnqueueWelcomeEmail(userID, email, name string) error {
	env := EmailEnvelope{
		To:      email,
		Subject: fmt.Sprintf("Welcome to Cartify, %s!", name),
		Body:    fmt.Sprintf("Hi %s, thanks for joining Cartify.", name),
	}
	payload := WelcomeEmailPayload{UserID: userID, Name: name, Email: email, Envelope: env, SentAt: time.Now()}
	b, _ := json.Marshal(payload)
	_, err := ensureClient().Enqueue(asynq.NewTask(TaskWelcomeEmail, b), asynq.Queue("emails"))
	return err
}

var orderSubjects = map[string]string{
	TaskOrderPlaced:    "Your order has been placed",
	TaskOrderReleased:  "Funds released for order",
	TaskOrderRefunded:  "Your order has been refunded",
	TaskOrderCancelled: "Your order has been cancelled",
}

// EnqueueOrderEvent schedules a lifecycle notification for an order. The task
// argument is one of the TaskOrder* constants; status is the order's new
// status string.
func EnqueueOrderEvent(task, orderID, userID, email, status string, amount int64) error {
	subject, ok := orderSubjects[task]
	if !ok {
		return fmt.Errorf("unknown order event task %q", task)
	}
	env := EmailEnvelope{
		To:      email,
		Subject: subject,
		Body:    fmt.Sprintf("Order %s is now %s. Amount %s.", orderID, status, formatAmount(amount)),
	}
	payload := OrderEventPayload{
		OrderID: orderID, UserID: userID, Email: email,
		Amount: amount, Status: status, Envelope: env, SentAt: time.Now(),
	}
	b, _ := json.Marshal(payload)
	_, err := ensureClient().Enqueue(asynq.NewTask(task, b), asynq.Queue("emails"))
	return err
}
