package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/zatekoja/healthcapacity/internal/domain/entities"
)

func percent(ratio float64) string {
	return fmt.Sprintf("%.1f%%", ratio*100)
}

func facilityLabel(f *entities.FacilityStatistic) string {
	if f == nil {
		return "-"
	}
	label := fmt.Sprintf("#%d %s", f.ID, f.MedicalOrganization)
	if f.BedProfile != "" {
		label += " (" + f.BedProfile + ")"
	}
	return label
}

func printReport(out io.Writer, r *entities.RecommendationReport) {
	fmt.Fprintf(out, "Report %s: %s, %d facilities evaluated\n", r.ID, r.Status, r.FacilitiesEvaluated)
	if r.Status == entities.ReportStatusBalanced {
		fmt.Fprintln(out, "No facility is above the overload threshold.")
		return
	}

	for _, rec := range r.Records {
		fmt.Fprintln(out)
		fmt.Fprintf(out, "%s  %s occupied, %d beds\n",
			facilityLabel(rec.Source), percent(rec.Source.OccupancyRate), rec.Source.BedsDeployed)
		fmt.Fprintf(out, "  redirect %d patients, %d beds needed (+%d), %d unallocated\n",
			rec.RedirectCount, rec.RequiredBeds.RequiredTotalBeds, rec.RequiredBeds.AdditionalBeds, rec.UnallocatedPatients)

		if len(rec.Alternatives) == 0 {
			fmt.Fprintln(out, "  no alternatives within the search radius")
			continue
		}
		printAlternativeTable(out, rec.Alternatives, "  ")
	}
}

func printAlternatives(out io.Writer, r *entities.AlternativeSearchResult) {
	state := "not overloaded"
	if r.Overloaded {
		state = "overloaded"
	}
	fmt.Fprintf(out, "%s  %s occupied, %s\n", facilityLabel(r.Source), percent(r.Source.OccupancyRate), state)

	if len(r.Alternatives) == 0 {
		fmt.Fprintln(out, "No alternatives within the search radius.")
		return
	}
	printAlternativeTable(out, r.Alternatives, "")
	if r.Total > len(r.Alternatives) {
		fmt.Fprintf(out, "(%d of %d shown)\n", len(r.Alternatives), r.Total)
	}
}

func printAlternativeTable(out io.Writer, alts []entities.AlternativeFacility, indent string) {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "%sFACILITY\tDISTRICT\tDISTANCE\tTRAVEL\tOCCUPANCY\tFREE BEDS\tPATIENTS\n", indent)
	for _, a := range alts {
		fmt.Fprintf(tw, "%s%s\t%s\t%.1f km\t%d min\t%s\t%d\t%d\n",
			indent,
			facilityLabel(a.Facility),
			a.Facility.District,
			a.DistanceKm,
			a.TravelTimeMinutes,
			percent(a.Facility.OccupancyRate),
			a.AvailableBeds,
			a.SuggestedPatients,
		)
	}
	tw.Flush()
}

func printSources(out io.Writer, r *entities.ReverseSearchResult) {
	fmt.Fprintf(out, "%s  %s occupied\n", facilityLabel(r.Target), percent(r.Target.OccupancyRate))
	if !r.Eligible {
		fmt.Fprintln(out, "Facility has no spare capacity and cannot receive patients.")
		return
	}
	if len(r.Candidates) == 0 {
		fmt.Fprintln(out, "No overloaded facility within the search radius.")
		return
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SOURCE\tDISTRICT\tDISTANCE\tTRAVEL\tOCCUPANCY\tTO REDIRECT")
	for _, c := range r.Candidates {
		fmt.Fprintf(tw, "%s\t%s\t%.1f km\t%d min\t%s\t%d\n",
			facilityLabel(c.Facility),
			c.Facility.District,
			c.DistanceKm,
			c.TravelTimeMinutes,
			percent(c.Facility.OccupancyRate),
			c.RedirectCount,
		)
	}
	tw.Flush()
}

func printBeds(out io.Writer, r *entities.BedSizingResult, target float64) {
	fmt.Fprintln(out, facilityLabel(r.Facility))
	fmt.Fprintf(out, "  occupancy:        %s of %d beds\n", percent(r.Facility.OccupancyRate), r.Facility.BedsDeployed)
	fmt.Fprintf(out, "  occupied beds:    %d\n", r.RequiredBeds.OccupiedBeds)
	fmt.Fprintf(out, "  beds at %s:   %d (+%d)\n", percent(target), r.RequiredBeds.RequiredTotalBeds, r.RequiredBeds.AdditionalBeds)
	fmt.Fprintf(out, "  to redirect:      %d patients\n", r.RedirectCount)
}

func printSummary(out io.Writer, s *entities.CapacitySummary) {
	fmt.Fprintf(out, "Facilities: %d (%d overloaded, %d with spare capacity)\n",
		s.TotalFacilities, s.OverloadedFacilities, s.UnderloadedFacilities)
	fmt.Fprintf(out, "Beds:       %d, %d occupied, average occupancy %s\n",
		s.TotalBeds, s.OccupiedBeds, percent(s.AverageOccupancy))

	fmt.Fprintln(out)
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "LOAD BAND\tFACILITIES")
	for _, band := range entities.LoadBands {
		fmt.Fprintf(tw, "%s\t%d\n", band, s.Bands[band])
	}
	tw.Flush()

	if len(s.Districts) == 0 {
		return
	}
	fmt.Fprintln(out)
	tw = tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "DISTRICT\tFACILITIES\tBEDS\tOCCUPIED\tOCCUPANCY\tOVERLOADED")
	for _, d := range s.Districts {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%s\t%d\n",
			d.District, d.Facilities, d.Beds, d.OccupiedBeds, percent(d.AverageOccupancy), d.Overloaded)
	}
	tw.Flush()
}

func printHospitalizations(out io.Writer, stats []*entities.HospitalizationStatistic) {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tORGANIZATION\tPROFILE\tADMITTED\tDISCHARGED\tDECEASED\tAVG STAY")
	for _, h := range stats {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%d\t%d\t%.1f d\n",
			h.ID, h.MedicalOrganization, h.BedProfile,
			h.AdmittedPatients, h.DischargedPatients, h.DeceasedPatients,
			h.AverageLengthOfStay(),
		)
	}
	tw.Flush()
}

func printCityBeds(out io.Writer, beds []*entities.CityOrganizationBeds) {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tORGANIZATION\tDISTRICT\tPROFILE\tBEDS")
	for _, b := range beds {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%d\n", b.ID, b.MedicalOrganization, b.District, b.BedProfile, b.Beds)
	}
	tw.Flush()
}
