package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"priestbook/backend/internal/config"
	"priestbook/backend/internal/domain/booking"
	"priestbook/backend/internal/domain/notifications"
	"priestbook/backend/internal/domain/payments"
	"priestbook/backend/internal/domain/priests"
	"priestbook/backend/internal/domain/profile"
	"priestbook/backend/internal/domain/reviews"
	"priestbook/backend/internal/domain/stats"
	"priestbook/backend/internal/firebase"
	"priestbook/backend/internal/handlers"
	apihttp "priestbook/backend/internal/http"
)

func main() {
	ctx := context.Background()
	cfg := config.Load()

	clients, err := firebase.NewClients(ctx, cfg)
	if err != nil {
		log.Fatalf("firebase init failed: %v", err)
	}
	defer clients.Close()

	// Repositories
	profileRepo := profile.NewRepo(clients.Firestore)
	priestsRepo := priests.NewRepo(clients.Firestore)
	bookingRepo := booking.NewRepo(clients.Firestore)
	reviewsRepo := reviews.NewRepo(clients.Firestore)

	// Services
	profileSvc := profile.NewService(profileRepo, clients.Auth)
	priestsSvc := priests.NewService(priestsRepo)
	bookingSvc := booking.NewService(bookingRepo, priestsSvc)
	reviewsSvc := reviews.NewService(reviewsRepo)
	notificationsSvc := notifications.NewService(clients.Firestore)
	statsSvc := stats.NewService(clients.Firestore)

	bookingSvc.SetNotifier(notificationsSvc)
	reviewsSvc.SetNotifier(notificationsSvc)

	// Stripe payments (optional - only if configured)
	var paymentsSvc *payments.Service
	if cfg.StripeSecretKey != "" {
		paymentsSvc = payments.NewService(cfg, bookingRepo)
		log.Println("Stripe payments initialized")
	} else {
		log.Println("STRIPE_SECRET_KEY not set, payments disabled")
	}

	uploads := handlers.NewUploads(cfg, clients)

	router := apihttp.NewRouter(apihttp.RouterDeps{
		Cfg:              cfg,
		AuthClient:       clients.Auth,
		ProfileSvc:       profileSvc,
		PriestsSvc:       priestsSvc,
		BookingSvc:       bookingSvc,
		ReviewsSvc:       reviewsSvc,
		PaymentsSvc:      paymentsSvc,
		NotificationsSvc: notificationsSvc,
		StatsSvc:         statsSvc,
		UploadsHandler:   uploads.CreateSignedUploadURL,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 20 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// graceful shutdown
	go func() {
		log.Printf("API listening on :%s (project=%s)", cfg.Port, cfg.ProjectID)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen failed: %v", err)
		}
	}()

	stop := make(chan os.Signal, 2)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	log.Println("shutting down...")
	_ = srv.Shutdown(ctxShutdown)
}
