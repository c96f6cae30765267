package services

// Cache operation names. Every read is cached under one of these.
const (
	OpIsCallerApproved   = "isCallerApproved"
	OpCallerApproval     = "callerApprovalStatus"
	OpIsAdmin            = "isAdmin"
	OpCurrentUserProfile = "currentUserProfile"
	OpUserProfile        = "userProfile"
	OpAlumniProfiles     = "alumniProfiles"
	OpGraduationYears    = "graduationYears"
	OpDepartments        = "departments"
	OpEvents             = "events"
	OpAnnouncements      = "announcements"
	OpGalleryImages      = "galleryImages"
	OpActivities         = "activities"
	OpApprovals          = "approvals"
	OpBackendStatus      = "backendStatus"
	OpBackendSnapshots   = "backendSnapshots"
)

// Mutation names a remote write
type Mutation string

const (
	MutationSaveCallerUserProfile Mutation = "saveCallerUserProfile"
	MutationRequestApproval       Mutation = "requestApproval"
	MutationSetApproval           Mutation = "setApproval"
	MutationAssignRole            Mutation = "assignCallerUserRole"
	MutationCreateEvent           Mutation = "createEvent"
	MutationUpdateEvent           Mutation = "updateEvent"
	MutationDeleteEvent           Mutation = "deleteEvent"
	MutationCreateAnnouncement    Mutation = "createAnnouncement"
	MutationDeleteAnnouncement    Mutation = "deleteAnnouncement"
	MutationCreateGalleryImage    Mutation = "createGalleryImage"
	MutationUpdateGalleryImage    Mutation = "updateGalleryImage"
	MutationDeleteGalleryImage    Mutation = "deleteGalleryImage"
	MutationCreateActivity        Mutation = "createActivity"
	MutationUpdateActivity        Mutation = "updateActivity"
	MutationDeleteActivity        Mutation = "deleteActivity"
	MutationCreateSnapshot        Mutation = "createBackendSnapshot"
	MutationDeleteSnapshot        Mutation = "deleteBackendSnapshot"
	MutationClearSnapshots        Mutation = "clearAllBackendSnapshots"
)

// Invalidations lists, for every write, the cache operations whose data it
// changes. Nothing is inferred: a write not listed here invalidates nothing.
var Invalidations = map[Mutation][]string{
	MutationSaveCallerUserProfile: {OpCurrentUserProfile, OpAlumniProfiles, OpGraduationYears, OpDepartments, OpUserProfile, OpApprovals, OpBackendStatus},
	MutationRequestApproval:       {OpIsCallerApproved, OpCallerApproval, OpApprovals, OpBackendStatus},
	MutationSetApproval:           {OpIsCallerApproved, OpCallerApproval, OpApprovals, OpBackendStatus},
	MutationAssignRole:            {OpIsAdmin, OpIsCallerApproved},
	MutationCreateEvent:           {OpEvents, OpBackendStatus},
	MutationUpdateEvent:           {OpEvents},
	MutationDeleteEvent:           {OpEvents, OpBackendStatus},
	MutationCreateAnnouncement:    {OpAnnouncements, OpBackendStatus},
	MutationDeleteAnnouncement:    {OpAnnouncements, OpBackendStatus},
	MutationCreateGalleryImage:    {OpGalleryImages, OpBackendStatus},
	MutationUpdateGalleryImage:    {OpGalleryImages},
	MutationDeleteGalleryImage:    {OpGalleryImages, OpBackendStatus},
	MutationCreateActivity:        {OpActivities, OpBackendStatus},
	MutationUpdateActivity:        {OpActivities},
	MutationDeleteActivity:        {OpActivities, OpBackendStatus},
	MutationCreateSnapshot:        {OpBackendSnapshots},
	MutationDeleteSnapshot:        {OpBackendSnapshots},
	MutationClearSnapshots:        {OpBackendSnapshots},
}
