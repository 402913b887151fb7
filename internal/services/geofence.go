package services

import (
	"context"
	"fmt"
	"math"

	"cane-backend/internal/models"
	"cane-backend/pkg/utils"
)

const earthRadiusM = 6371000.0

// LoadingPointLookup resolves the loading point a registration was captured at
type LoadingPointLookup interface {
	Get(ctx context.Context, id string) (*models.LoadingPoint, error)
}

// haversineMeters returns the great-circle distance between two coordinates
func haversineMeters(lat1, lng1, lat2, lng2 float64) float64 {
	toRad := func(d float64) float64 { return d * math.Pi / 180 }
	dLat := toRad(lat2 - lat1)
	dLng := toRad(lng2 - lng1)
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(lat1))*math.Cos(toRad(lat2))*math.Sin(dLng/2)*math.Sin(dLng/2)
	return 2 * earthRadiusM * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}

// checkGeofence rejects a registration captured outside the loading point radius
func checkGeofence(ctx context.Context, points LoadingPointLookup, loadingPointID string, lat, lng float64) (*models.LoadingPoint, error) {
	lp, err := points.Get(ctx, loadingPointID)
	if err != nil {
		if utils.IsNotFound(err) {
			return nil, utils.ValidationError(map[string]string{"loadingPointId": "unknown loading point"})
		}
		return nil, err
	}
	if lp.Status == models.RecordInactive {
		return nil, utils.ValidationError(map[string]string{"loadingPointId": "loading point is inactive"})
	}

	dist := haversineMeters(lat, lng, lp.Latitude, lp.Longitude)
	if dist > lp.RadiusM {
		return nil, utils.ValidationError(map[string]string{
			"location": fmt.Sprintf("%.0fm from %s, allowed radius is %.0fm", dist, lp.Name, lp.RadiusM),
		})
	}
	return lp, nil
}
